package response

import (
	"net/http"

	"sellerhub/pkg/errcode"

	"github.com/gin-gonic/gin"
)

// ErrorBody 失败响应体
// 调用方应根据是否存在 success 字段判断结果，而不是只看 HTTP 状态码
type ErrorBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	ClientMessage string `json:"client_message"`
	Code          int    `json:"code"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": data,
	})
}

// Error 按错误码表输出，非业务错误统一输出 C0001
func Error(c *gin.Context, err error) {
	e := errcode.From(err)
	if e.Kind == errcode.KindInfra {
		// 保留原始错误，便于排查
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(e.Status, ErrorBody{
		Error:         e.Code,
		Message:       e.Message,
		ClientMessage: e.ClientMessage,
		Code:          e.Status,
	})
}

func ParamError(c *gin.Context, err error) {
	Error(c, errcode.ErrInvalidType.WithCause(err))
}

package handler

import (
	"strings"

	"sellerhub/internal/service"
	"sellerhub/pkg/errcode"
	"sellerhub/pkg/response"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// authenticate 解析 Authorization 头，成功后把 Caller 放进上下文
// 同时接受 "Bearer <token>" 和裸 token
func (h *Handler) authenticate(c *gin.Context) (*service.Caller, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		response.Error(c, errcode.ErrNoToken)
		return nil, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims, err := h.authService.ParseToken(token)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	caller, err := h.authService.ResolveCaller(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	c.Set(callerKey, caller)
	return caller, true
}

// AuthMiddleware 需要登录：无令牌 A1041，令牌无效 A1042
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireMaster 仅管理员 C0004，必须在 AuthMiddleware 之后
func RequireMaster() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller := callerFrom(c); caller == nil || !caller.IsMaster {
			response.Error(c, errcode.ErrMasterOnly)
			return
		}
		c.Next()
	}
}

// RequireSeller 仅卖家 C0007
func RequireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller := callerFrom(c); caller == nil || caller.IsMaster {
			response.Error(c, errcode.ErrSellerOnly)
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) *service.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*service.Caller)
	return caller
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 配置路由
func SetupRouter(h *Handler, log *zap.Logger, mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(log))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware())

	login := h.AuthMiddleware()

	account := r.Group("/account")
	{
		account.POST("/signup", h.Signup)
		account.POST("/signin", h.Signin)
		account.GET("/seller", login, RequireMaster(), h.ListSellers)
		account.GET("/sellerDetail/:id", login, h.SellerDetail)
		account.POST("/action", login, RequireMaster(), h.ChangeSellerStatus)
	}

	r.GET("/home", login, RequireSeller(), h.Home)

	order := r.Group("/order")
	{
		order.POST("/change", login, h.ChangeOrderStatus)
		// 数字 key 为商品ID，其余为订单页签，登录校验在 GetOrder 内部按 key 决定
		order.GET("/:key", h.GetOrder)
		order.POST("/:key", h.PlaceOrder)
	}

	product := r.Group("/product", login)
	{
		product.GET("", h.ListProducts)
		product.POST("", h.ChangeProductStatus)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

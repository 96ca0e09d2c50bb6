package handler

import (
	"strconv"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/infrastructure/lock"
	"sellerhub/internal/service"
	"sellerhub/pkg/errcode"
	"sellerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	authService         *service.AuthService
	accountService      *service.AccountService
	sellerStatusService *service.SellerStatusService
	orderService        *service.OrderService
	progressService     *service.ProgressService
	productService      *service.ProductService
	homeService         *service.HomeService
}

// NewHandler 创建处理器实例，locker 和 notifier 可以为 nil
func NewHandler(db *gorm.DB, locker lock.Locker, notifier service.Notifier, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		authService:         service.NewAuthService(db, log, &cfg.JWT),
		accountService:      service.NewAccountService(db, log),
		sellerStatusService: service.NewSellerStatusService(db, log),
		orderService:        service.NewOrderService(db, log, locker, notifier),
		progressService:     service.NewProgressService(db, log, notifier),
		productService:      service.NewProductService(db, log),
		homeService:         service.NewHomeService(db, log),
	}
}

// ============================================================
// 账户
// ============================================================

// Signup 卖家入驻
// POST /account/signup
func (h *Handler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.accountService.Signup(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Signin 登录
// POST /account/signin
func (h *Handler) Signin(c *gin.Context) {
	var req service.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrNoData.WithCause(err))
		return
	}

	result, err := h.authService.Signin(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListSellers 卖家列表（管理员）
// GET /account/seller
func (h *Handler) ListSellers(c *gin.Context) {
	var q service.SellerListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.accountService.ListSellers(c.Request.Context(), &q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SellerDetail 卖家详情
// GET /account/sellerDetail/:id
func (h *Handler) SellerDetail(c *gin.Context) {
	sellerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.accountService.SellerDetail(c.Request.Context(), callerFrom(c), sellerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeSellerStatus 卖家状态操作（管理员）
// POST /account/action
func (h *Handler) ChangeSellerStatus(c *gin.Context) {
	var req service.SellerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}
	req.MasterID = callerFrom(c).AccountID

	result, err := h.sellerStatusService.ApplyAction(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ============================================================
// 首页
// ============================================================

// Home 卖家首页统计
// GET /home
func (h *Handler) Home(c *gin.Context) {
	result, err := h.homeService.Dashboard(c.Request.Context(), callerFrom(c).AccountID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ============================================================
// 订单
// ============================================================

// GetOrder 数字 key 为商品ID，返回下单页规格选项（无需登录）；
// 否则按订单页签查询列表（需要登录）
// GET /order/:key
func (h *Handler) GetOrder(c *gin.Context) {
	key := c.Param("key")
	if productID, err := strconv.ParseInt(key, 10, 64); err == nil {
		result, err := h.orderService.GetOrderOptions(c.Request.Context(), productID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	caller, ok := h.authenticate(c)
	if !ok {
		return
	}

	var q service.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err)
		return
	}
	q.Bucket = key

	result, err := h.orderService.ListOrders(c.Request.Context(), caller, &q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// PlaceOrder 下单
// POST /order/:key
func (h *Handler) PlaceOrder(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("key"), 10, 64)
	if err != nil {
		response.ParamError(c, err)
		return
	}

	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}
	req.ProductID = productID

	result, err := h.orderService.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeOrderStatus 子订单状态推进
// POST /order/change
func (h *Handler) ChangeOrderStatus(c *gin.Context) {
	var req service.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.progressService.Progress(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ============================================================
// 商品
// ============================================================

// ListProducts 商品列表
// GET /product
func (h *Handler) ListProducts(c *gin.Context) {
	var q service.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), callerFrom(c), &q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeProductStatus 批量修改销售/展示状态
// POST /product
func (h *Handler) ChangeProductStatus(c *gin.Context) {
	var req service.ProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	result, err := h.productService.ChangeProductStatus(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

package service

import (
	"context"
	"errors"
	"time"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/infrastructure/lock"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"
	"sellerhub/pkg/idgen"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	stockLockTTL           = 10 * time.Second
	stockLockRetryInterval = 50 * time.Millisecond
	stockLockMaxRetries    = 40
)

type OrderService struct {
	db          *gorm.DB
	log         *zap.Logger
	locker      lock.Locker // nil 时不加规格锁，只依赖条件扣减
	notifier    Notifier
	productRepo *repository.ProductRepository
	optionRepo  *repository.OptionRepository
	orderRepo   *repository.OrderRepository
	detailRepo  *repository.DetailOrderRepository
}

func NewOrderService(db *gorm.DB, log *zap.Logger, locker lock.Locker, notifier Notifier) *OrderService {
	return &OrderService{
		db:          db,
		log:         log.Named("order"),
		locker:      locker,
		notifier:    notifier,
		productRepo: repository.NewProductRepository(db),
		optionRepo:  repository.NewOptionRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		detailRepo:  repository.NewDetailOrderRepository(db),
	}
}

type PlaceOrderRequest struct {
	ProductID     int64  `json:"-"`
	ColorID       int64  `json:"color_id" binding:"required"`
	SizeID        int64  `json:"size_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	BuyerName     string `json:"buyer_name" binding:"required"`
	Contact       string `json:"contact" binding:"required"`
	ZipCode       string `json:"zip_code" binding:"required"`
	StreetAddress string `json:"street_address" binding:"required"`
	DetailAddress string `json:"detail_address"`
}

type PlaceOrderResult struct {
	OrderID       int64           `json:"order_id"`
	OrderNo       string          `json:"order_no"`
	DetailOrderID int64           `json:"detail_order_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// ============================================================================
// 下单
// ============================================================================
//
// 1. 校验商品：不存在 P2011 / 已删除 P2012 / 未销售 P2013
// 2. 校验规格和购买数量区间 P2014
// 3. 校验库存 P2015
// 4. 计算总价
// 5. 事务内写入 收货人 -> 订单 -> 子订单 -> 状态日志 -> 扣减库存
// 6. 提交后发送 "상품준비" 通知
//
// 1-3 不产生任何写入；5 中任一步失败整体回滚。
// ============================================================================

func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	var (
		result  *PlaceOrderResult
		product *model.Product
	)

	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		var err error
		product, err = s.checkProduct(ctx, conn, req.ProductID)
		if err != nil {
			return err
		}

		option, err := s.checkOption(ctx, conn, product, req.ColorID, req.SizeID, req.Quantity)
		if err != nil {
			return err
		}

		if option.IsStockControlled {
			if s.locker != nil {
				l := s.locker.NewLock(lock.OptionStockKey(option.ID), stockLockTTL)
				if err := l.Lock(ctx, stockLockRetryInterval, stockLockMaxRetries); err != nil {
					return errcode.ErrInternal.WithCause(err)
				}
				defer func() {
					if err := l.Unlock(context.Background()); err != nil {
						s.log.Warn("释放规格锁失败", zap.Int64("option_id", option.ID), zap.Error(err))
					}
				}()
			}
			if option.StockQuantity < req.Quantity {
				return errcode.ErrInsufficientStock
			}
		}

		total := model.LineTotal(product.Price, product.DiscountRate, req.Quantity)

		return conn.Transaction(func(tx *gorm.DB) error {
			receiver := &model.Receiver{
				Name:          req.BuyerName,
				Contact:       req.Contact,
				ZipCode:       req.ZipCode,
				StreetAddress: req.StreetAddress,
				DetailAddress: req.DetailAddress,
			}
			if err := s.orderRepo.CreateReceiver(ctx, tx, receiver); err != nil {
				return err
			}

			now := time.Now()
			order := &model.Order{
				OrderNo:    idgen.GenerateOrderNo(),
				ReceiverID: receiver.ID,
				TotalPrice: total,
				PaidAt:     now,
			}
			if err := s.orderRepo.Create(ctx, tx, order); err != nil {
				return err
			}

			detail := &model.DetailOrder{
				OrderID:      order.ID,
				ProductID:    product.ID,
				OptionID:     option.ID,
				SellerID:     product.SellerID,
				ReceiverID:   receiver.ID,
				Price:        product.Price,
				DiscountRate: product.DiscountRate,
				Quantity:     req.Quantity,
				StatusID:     model.OrderStatusPreparingItem,
				OrderedAt:    now,
			}
			if err := s.orderRepo.CreateDetail(ctx, tx, detail); err != nil {
				return err
			}

			// 买家即操作人，没有账户ID，记为 0
			err := s.detailRepo.CreateStatusLogs(ctx, tx, []*model.DetailOrderStatusLog{{
				DetailOrderID: detail.ID,
				StatusID:      model.OrderStatusPreparingItem,
			}})
			if err != nil {
				return err
			}

			if option.IsStockControlled {
				if err := s.optionRepo.DecrementStock(ctx, tx, option.ID, req.Quantity); err != nil {
					if errors.Is(err, repository.ErrStockNotEnough) {
						return errcode.ErrInsufficientStock
					}
					return err
				}
			}

			result = &PlaceOrderResult{
				OrderID:       order.ID,
				OrderNo:       order.OrderNo,
				DetailOrderID: detail.ID,
				TotalPrice:    total,
			}
			return nil
		})
	})
	if err != nil {
		return nil, s.wrap(err)
	}

	s.log.Info("下单成功",
		zap.String("order_no", result.OrderNo),
		zap.Int64("detail_order_id", result.DetailOrderID),
		zap.String("total_price", result.TotalPrice.String()))

	notifyBestEffort(ctx, s.log, s.notifier, []*model.Notification{{
		DetailOrderID: result.DetailOrderID,
		BuyerName:     req.BuyerName,
		ProductName:   product.Name,
		StatusID:      model.OrderStatusPreparingItem,
		Status:        model.OrderStatusName(model.OrderStatusPreparingItem),
		OccurredAt:    time.Now(),
	}})
	return result, nil
}

func (s *OrderService) checkProduct(ctx context.Context, conn *gorm.DB, productID int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, conn, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errcode.ErrProductNotFound
		}
		return nil, err
	}
	if product.IsDeleted {
		return nil, errcode.ErrProductDeleted
	}
	if !product.IsOnSale {
		return nil, errcode.ErrProductNotOnSale
	}
	return product, nil
}

// checkOption 规格存在且购买数量在 [min_quantity, max_quantity] 内
func (s *OrderService) checkOption(ctx context.Context, conn *gorm.DB, product *model.Product, colorID, sizeID int64, quantity int) (*model.Option, error) {
	if quantity < product.MinQuantity || quantity > product.MaxQuantity {
		return nil, errcode.ErrOptionUnavailable
	}
	option, err := s.optionRepo.FindAvailable(ctx, conn, product.ID, colorID, sizeID)
	if err != nil {
		if errors.Is(err, repository.ErrOptionNotFound) {
			return nil, errcode.ErrOptionUnavailable
		}
		return nil, err
	}
	return option, nil
}

// ============================================================================
// 下单页规格选项
// ============================================================================

type OrderOptions struct {
	ProductID   int64                      `json:"product_id"`
	ProductName string                     `json:"product_name"`
	Price       decimal.Decimal            `json:"price"`
	Discount    *int                       `json:"discount_rate"`
	MinQuantity int                        `json:"min_quantity"`
	MaxQuantity int                        `json:"max_quantity"`
	Colors      []*repository.OptionChoice `json:"colors"`
	Sizes       []*repository.OptionChoice `json:"sizes"`
}

func (s *OrderService) GetOrderOptions(ctx context.Context, productID int64) (*OrderOptions, error) {
	var out *OrderOptions
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		product, err := s.checkProduct(ctx, conn, productID)
		if err != nil {
			return err
		}
		colors, err := s.optionRepo.ListColors(ctx, conn, productID)
		if err != nil {
			return err
		}
		sizes, err := s.optionRepo.ListSizes(ctx, conn, productID)
		if err != nil {
			return err
		}
		if len(colors) == 0 || len(sizes) == 0 {
			return errcode.ErrOptionUnavailable
		}
		out = &OrderOptions{
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Discount:    product.DiscountRate,
			MinQuantity: product.MinQuantity,
			MaxQuantity: product.MaxQuantity,
			Colors:      colors,
			Sizes:       sizes,
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	return out, nil
}

// ============================================================================
// 订单列表
// ============================================================================

type OrderListQuery struct {
	Bucket        string `form:"-"`
	OrderNumber   string `form:"order_number"`
	DetailOrderID int64  `form:"detail_order_id"`
	ReceiverName  string `form:"receiver_name"`
	PhoneNumber   string `form:"phone_number"`
	ProductName   string `form:"product_name"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

type OrderList struct {
	Total  int64                      `json:"total"`
	Orders []*repository.OrderListRow `json:"orders"`
}

// ListOrders 按页签查询订单；卖家只能看到自己的子订单
func (s *OrderService) ListOrders(ctx context.Context, caller *Caller, q *OrderListQuery) (*OrderList, error) {
	statusID, ok := model.OrderBucketStatus(q.Bucket)
	if !ok {
		return nil, errcode.ErrNoData
	}
	limit, offset, err := normalizePage(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	filter := &repository.OrderFilter{
		StatusID:      statusID,
		OrderNumber:   q.OrderNumber,
		DetailOrderID: q.DetailOrderID,
		ReceiverName:  q.ReceiverName,
		PhoneNumber:   q.PhoneNumber,
		ProductName:   q.ProductName,
		Limit:         limit,
		Offset:        offset,
	}
	if !caller.IsMaster {
		filter.SellerID = caller.AccountID
	}

	var out *OrderList
	err = database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		rows, total, err := s.orderRepo.List(ctx, conn, filter)
		if err != nil {
			return err
		}
		out = &OrderList{Total: total, Orders: rows}
		return nil
	})
	if err != nil {
		return nil, s.wrap(err)
	}
	return out, nil
}

func (s *OrderService) wrap(err error) error {
	return wrapInternal(s.log, err)
}

package repository

import (
	"context"
	"time"

	"sellerhub/internal/model"

	"gorm.io/gorm"
)

// OrderRepository 收货人、订单、子订单的写入和订单列表查询
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateReceiver(ctx context.Context, tx *gorm.DB, receiver *model.Receiver) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(receiver).Error
}

func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) CreateDetail(ctx context.Context, tx *gorm.DB, detail *model.DetailOrder) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(detail).Error
}

// OrderFilter 订单列表筛选条件
type OrderFilter struct {
	StatusID      int // 0 表示全部
	SellerID      int64
	OrderNumber   string
	DetailOrderID int64
	ReceiverName  string
	PhoneNumber   string
	ProductName   string
	Limit         int
	Offset        int
}

type OrderListRow struct {
	PaidAt          time.Time `json:"paid_at"`
	OrderID         int64     `json:"order_id"`
	OrderNo         string    `json:"order_no"`
	DetailOrderID   int64     `json:"detail_order_id"`
	ProductName     string    `json:"product_name"`
	OptionID        int64     `json:"option_id"`
	Quantity        int       `json:"quantity"`
	ReceiverName    string    `json:"receiver_name"`
	ReceiverContact string    `json:"receiver_contact"`
	StatusID        int       `json:"status_id"`
	StatusName      string    `gorm:"-" json:"status_name"`
}

func (r *OrderRepository) List(ctx context.Context, tx *gorm.DB, f *OrderFilter) ([]*OrderListRow, int64, error) {
	if tx == nil {
		tx = r.db
	}

	base := func() *gorm.DB {
		q := tx.WithContext(ctx).
			Table("detail_orders AS d").
			Joins("JOIN orders AS o ON o.id = d.order_id").
			Joins("JOIN products AS p ON p.id = d.product_id").
			Joins("JOIN receivers AS r ON r.id = d.receiver_id")

		if f.StatusID > 0 {
			q = q.Where("d.status_id = ?", f.StatusID)
		}
		if f.SellerID > 0 {
			q = q.Where("d.seller_id = ?", f.SellerID)
		}
		if f.OrderNumber != "" {
			q = q.Where("o.order_no = ?", f.OrderNumber)
		}
		if f.DetailOrderID > 0 {
			q = q.Where("d.id = ?", f.DetailOrderID)
		}
		if f.ReceiverName != "" {
			q = q.Where("r.name = ?", f.ReceiverName)
		}
		if f.PhoneNumber != "" {
			q = q.Where("r.contact = ?", f.PhoneNumber)
		}
		if f.ProductName != "" {
			q = q.Where("p.name = ?", f.ProductName)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*OrderListRow
	err := base().
		Select(`o.paid_at, d.order_id, o.order_no, d.id AS detail_order_id, p.name AS product_name,
			d.option_id, d.quantity, r.name AS receiver_name, r.contact AS receiver_contact, d.status_id`).
		Order("d.order_id DESC, d.id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		row.StatusName = model.OrderStatusName(row.StatusID)
	}
	return rows, total, nil
}

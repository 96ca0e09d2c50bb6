package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Receiver struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string `gorm:"type:varchar(50);not null" json:"name"`
	Contact       string `gorm:"type:varchar(20);not null" json:"contact"`
	ZipCode       string `gorm:"type:varchar(10)" json:"zip_code"`
	StreetAddress string `gorm:"type:varchar(200)" json:"street_address"`
	DetailAddress string `gorm:"type:varchar(200)" json:"detail_address"`
}

func (Receiver) TableName() string {
	return "receivers"
}

// Order 一次结算生成一条，创建后不可修改
type Order struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo    string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	ReceiverID int64           `gorm:"index;not null" json:"receiver_id"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
	PaidAt     time.Time       `gorm:"not null" json:"paid_at"`
}

func (Order) TableName() string {
	return "orders"
}

// DetailOrder 子订单，状态流转的最小单位
// Price 和 DiscountRate 是下单时的快照，之后商品改价不影响
type DetailOrder struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"index;not null" json:"order_id"`
	ProductID    int64           `gorm:"index;not null" json:"product_id"`
	OptionID     int64           `gorm:"not null" json:"option_id"`
	SellerID     int64           `gorm:"index;not null" json:"seller_id"`
	ReceiverID   int64           `gorm:"not null" json:"receiver_id"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DiscountRate *int            `json:"discount_rate"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	StatusID     int             `gorm:"index;not null" json:"status_id"`
	OrderedAt    time.Time       `gorm:"not null;index" json:"ordered_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (DetailOrder) TableName() string {
	return "detail_orders"
}

// LineTotal 按快照价计算该行金额
func (d *DetailOrder) LineTotal() decimal.Decimal {
	return LineTotal(d.Price, d.DiscountRate, d.Quantity)
}

// DetailOrderStatusLog 子订单状态变更历史，只追加
type DetailOrderStatusLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DetailOrderID int64     `gorm:"index;not null" json:"detail_order_id"`
	StatusID      int       `gorm:"not null" json:"status_id"`
	UpdaterID     int64     `gorm:"not null" json:"updater_id"`
	ChangedAt     time.Time `gorm:"autoCreateTime" json:"changed_at"`
}

func (DetailOrderStatusLog) TableName() string {
	return "detail_order_status_log"
}

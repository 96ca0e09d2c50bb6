package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品，三个标志位相互独立，只做软删除
type Product struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID     int64           `gorm:"index;not null" json:"seller_id"` // sellers.account_id
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	DiscountRate *int            `json:"discount_rate"` // 百分比，NULL 表示不打折
	MinQuantity  int             `gorm:"not null;default:1" json:"min_quantity"`
	MaxQuantity  int             `gorm:"not null;default:20" json:"max_quantity"`
	IsOnSale     bool            `gorm:"not null;default:false" json:"is_on_sale"`
	IsDisplayed  bool            `gorm:"not null;default:false" json:"is_displayed"`
	IsDeleted    bool            `gorm:"not null;default:false" json:"is_deleted"`
	UpdaterID    int64           `json:"updater_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Available 首页统计口径：展示中、销售中且未删除
func (p *Product) Available() bool {
	return p.IsDisplayed && p.IsOnSale && !p.IsDeleted
}

type Color struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(30);not null" json:"name"`
}

func (Color) TableName() string {
	return "colors"
}

type Size struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(30);not null" json:"name"`
}

func (Size) TableName() string {
	return "sizes"
}

// Option 商品规格 (商品, 颜色, 尺码)
// IsStockControlled 为 false 时不校验也不扣减库存
type Option struct {
	ID                int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID         int64 `gorm:"index:idx_option_product_color_size;not null" json:"product_id"`
	ColorID           int64 `gorm:"index:idx_option_product_color_size;not null" json:"color_id"`
	SizeID            int64 `gorm:"index:idx_option_product_color_size;not null" json:"size_id"`
	StockQuantity     int   `gorm:"not null;default:0" json:"stock_quantity"`
	IsStockControlled bool  `gorm:"not null;default:false" json:"is_stock_controlled"`
	IsDeleted         bool  `gorm:"not null;default:false" json:"-"`
}

func (Option) TableName() string {
	return "options"
}

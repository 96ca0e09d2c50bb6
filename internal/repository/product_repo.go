package repository

import (
	"context"
	"errors"
	"time"

	"sellerhub/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("商品不存在")

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID 按ID查询，包含已软删除的商品，由调用方判断状态
func (r *ProductRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.Product, error) {
	if tx == nil {
		tx = r.db
	}
	var product model.Product
	err := tx.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListBySeller 卖家的全部商品（含已删除），首页统计使用
func (r *ProductRepository) ListBySeller(ctx context.Context, tx *gorm.DB, sellerID int64) ([]*model.Product, error) {
	if tx == nil {
		tx = r.db
	}
	var products []*model.Product
	err := tx.WithContext(ctx).Where("seller_id = ?", sellerID).Find(&products).Error
	return products, err
}

// CountEditable 统计 ids 中未删除的商品数，sellerID > 0 时只统计该卖家的商品
func (r *ProductRepository) CountEditable(ctx context.Context, tx *gorm.DB, ids []int64, sellerID int64) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	q := tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id IN ? AND is_deleted = ?", ids, false)
	if sellerID > 0 {
		q = q.Where("seller_id = ?", sellerID)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// UpdateFlags 批量修改销售/展示标志
func (r *ProductRepository) UpdateFlags(ctx context.Context, tx *gorm.DB, ids []int64, isOnSale, isDisplayed *bool, updaterID int64) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	updates := map[string]interface{}{"updater_id": updaterID}
	if isOnSale != nil {
		updates["is_on_sale"] = *isOnSale
	}
	if isDisplayed != nil {
		updates["is_displayed"] = *isDisplayed
	}

	result := tx.WithContext(ctx).
		Model(&model.Product{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// ProductFilter 商品列表筛选条件
type ProductFilter struct {
	Sale          *bool
	Displayed     *bool
	Discount      *bool
	ProductName   string
	ProductNumber int64
	ProductCode   int64 // 规格ID
	SellerID      int64 // 卖家登录时强制按自己筛选
	SellerName    string
	AttributeID   int
	From          *time.Time
	Until         *time.Time
	Limit         int
	Offset        int
}

type ProductListRow struct {
	ProductNumber int64           `json:"product_number"`
	CreatedAt     time.Time       `json:"created_at"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	DiscountRate  *int            `json:"discount_rate"`
	DiscountPrice decimal.Decimal `gorm:"-" json:"discount_price"`
	IsDisplayed   bool            `json:"is_displayed"`
	IsOnSale      bool            `json:"is_on_sale"`
	SellerName    string          `json:"seller_name"`
	Attribute     string          `json:"attribute"`
	ProductCode   *int64          `json:"product_code"`
}

func (r *ProductRepository) List(ctx context.Context, tx *gorm.DB, f *ProductFilter) ([]*ProductListRow, int64, error) {
	if tx == nil {
		tx = r.db
	}

	base := func() *gorm.DB {
		q := tx.WithContext(ctx).
			Table("products AS p").
			Joins("JOIN sellers AS s ON s.account_id = p.seller_id").
			Joins("JOIN seller_attributes AS sa ON sa.id = s.attribute_id").
			Where("p.is_deleted = ?", false)

		if f.Sale != nil {
			q = q.Where("p.is_on_sale = ?", *f.Sale)
		}
		if f.Displayed != nil {
			q = q.Where("p.is_displayed = ?", *f.Displayed)
		}
		if f.Discount != nil {
			if *f.Discount {
				q = q.Where("p.discount_rate > 0")
			} else {
				q = q.Where("(p.discount_rate IS NULL OR p.discount_rate = 0)")
			}
		}
		if f.ProductName != "" {
			q = q.Where("p.name = ?", f.ProductName)
		}
		if f.ProductNumber > 0 {
			q = q.Where("p.id = ?", f.ProductNumber)
		}
		if f.ProductCode > 0 {
			q = q.Where("EXISTS (SELECT 1 FROM options AS o WHERE o.product_id = p.id AND o.id = ?)", f.ProductCode)
		}
		if f.From != nil {
			q = q.Where("p.created_at >= ?", *f.From)
		}
		if f.Until != nil {
			q = q.Where("p.created_at < ?", *f.Until)
		}

		if f.SellerID > 0 {
			q = q.Where("p.seller_id = ?", f.SellerID)
		} else {
			if f.AttributeID > 0 {
				q = q.Where("s.attribute_id = ?", f.AttributeID)
			}
			if f.SellerName != "" {
				q = q.Where("s.korean_name = ?", f.SellerName)
			}
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*ProductListRow
	err := base().
		Select(`p.id AS product_number, p.created_at, p.name AS product_name, p.price, p.discount_rate,
			p.is_displayed, p.is_on_sale, s.korean_name AS seller_name, sa.name AS attribute,
			(SELECT MIN(o.id) FROM options AS o WHERE o.product_id = p.id) AS product_code`).
		Order("p.id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		row.DiscountPrice = model.LineTotal(row.Price, row.DiscountRate, 1)
	}
	return rows, total, nil
}

package repository

import (
	"context"
	"errors"

	"sellerhub/internal/model"

	"gorm.io/gorm"
)

var (
	ErrOptionNotFound = errors.New("规格不存在")
	ErrStockNotEnough = errors.New("库存不足")
)

type OptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// FindAvailable 按 (商品, 颜色, 尺码) 查询未删除的规格
func (r *OptionRepository) FindAvailable(ctx context.Context, tx *gorm.DB, productID, colorID, sizeID int64) (*model.Option, error) {
	if tx == nil {
		tx = r.db
	}
	var option model.Option
	err := tx.WithContext(ctx).
		Where("product_id = ? AND color_id = ? AND size_id = ? AND is_deleted = ?", productID, colorID, sizeID, false).
		First(&option).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	return &option, nil
}

// DecrementStock 扣减库存
//
// 条件更新 stock_quantity >= quantity，校验和扣减在同一条语句里完成，
// 并发下单不会把库存扣成负数。影响行数为 0 返回 ErrStockNotEnough。
// 只应对 is_stock_controlled 的规格调用。
func (r *OptionRepository) DecrementStock(ctx context.Context, tx *gorm.DB, optionID int64, quantity int) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Option{}).
		Where("id = ? AND stock_quantity >= ?", optionID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockNotEnough
	}
	return nil
}

type OptionChoice struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListColors 商品未删除规格中出现的颜色
func (r *OptionRepository) ListColors(ctx context.Context, tx *gorm.DB, productID int64) ([]*OptionChoice, error) {
	return r.listChoices(ctx, tx, "colors", "color_id", productID)
}

// ListSizes 商品未删除规格中出现的尺码
func (r *OptionRepository) ListSizes(ctx context.Context, tx *gorm.DB, productID int64) ([]*OptionChoice, error) {
	return r.listChoices(ctx, tx, "sizes", "size_id", productID)
}

func (r *OptionRepository) listChoices(ctx context.Context, tx *gorm.DB, table, column string, productID int64) ([]*OptionChoice, error) {
	if tx == nil {
		tx = r.db
	}
	var choices []*OptionChoice
	err := tx.WithContext(ctx).
		Table(table+" AS c").
		Select("DISTINCT c.id, c.name").
		Joins("JOIN options AS o ON o."+column+" = c.id").
		Where("o.product_id = ? AND o.is_deleted = ?", productID, false).
		Order("c.id ASC").
		Scan(&choices).Error
	return choices, err
}

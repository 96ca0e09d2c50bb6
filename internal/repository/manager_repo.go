package repository

import (
	"context"

	"sellerhub/internal/model"

	"gorm.io/gorm"
)

type ManagerRepository struct {
	db *gorm.DB
}

func NewManagerRepository(db *gorm.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

func (r *ManagerRepository) Create(ctx context.Context, tx *gorm.DB, manager *model.Manager) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(manager).Error
}

// ListActive 未删除的联系人，按 ordering 排序
func (r *ManagerRepository) ListActive(ctx context.Context, tx *gorm.DB, sellerID int64) ([]*model.Manager, error) {
	if tx == nil {
		tx = r.db
	}
	var managers []*model.Manager
	err := tx.WithContext(ctx).
		Where("seller_id = ? AND is_deleted = ?", sellerID, false).
		Order("ordering ASC").
		Find(&managers).Error
	return managers, err
}

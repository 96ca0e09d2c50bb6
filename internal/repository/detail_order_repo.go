package repository

import (
	"context"
	"errors"
	"time"

	"sellerhub/internal/model"

	"gorm.io/gorm"
)

var ErrDetailOrderStatusInvalid = errors.New("子订单状态不一致")

type DetailOrderRepository struct {
	db *gorm.DB
}

func NewDetailOrderRepository(db *gorm.DB) *DetailOrderRepository {
	return &DetailOrderRepository{db: db}
}

// CountByStatus 统计 ids 中当前状态为 statusID 的子订单数，sellerID 为 0 时不限卖家
func (r *DetailOrderRepository) CountByStatus(ctx context.Context, tx *gorm.DB, ids []int64, statusID int, sellerID int64) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := whereStatus(tx.WithContext(ctx).Model(&model.DetailOrder{}), ids, statusID, sellerID).
		Count(&count).Error
	return count, err
}

// UpdateStatusBatch 批量推进状态
//
// 只更新当前状态仍为 fromStatus 的行，影响行数必须等于 len(ids)，
// 否则说明有子订单已被其他请求或定时任务修改，返回 ErrDetailOrderStatusInvalid，
// 调用方回滚事务。sellerID 非 0 时其他卖家的子订单不会被更新，同样按不一致处理。
func (r *DetailOrderRepository) UpdateStatusBatch(ctx context.Context, tx *gorm.DB, ids []int64, fromStatus, toStatus int, sellerID int64) error {
	if tx == nil {
		tx = r.db
	}

	result := whereStatus(tx.WithContext(ctx).Model(&model.DetailOrder{}), ids, fromStatus, sellerID).
		Updates(map[string]interface{}{
			"status_id": toStatus,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(len(ids)) {
		return ErrDetailOrderStatusInvalid
	}
	return nil
}

// whereStatus sellerID 为 0 时不限卖家
func whereStatus(q *gorm.DB, ids []int64, statusID int, sellerID int64) *gorm.DB {
	if sellerID == 0 {
		return q.Where("id IN ? AND status_id = ?", ids, statusID)
	}
	return q.Where("id IN ? AND status_id = ? AND seller_id = ?", ids, statusID, sellerID)
}

func (r *DetailOrderRepository) CreateStatusLogs(ctx context.Context, tx *gorm.DB, logs []*model.DetailOrderStatusLog) error {
	if len(logs) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(&logs).Error
}

// FindStaleIDs 状态为 statusID 且最后更新早于 before 的子订单ID
func (r *DetailOrderRepository) FindStaleIDs(ctx context.Context, tx *gorm.DB, statusID int, before time.Time, limit int) ([]int64, error) {
	if tx == nil {
		tx = r.db
	}
	var ids []int64
	err := tx.WithContext(ctx).
		Model(&model.DetailOrder{}).
		Where("status_id = ? AND updated_at <= ?", statusID, before).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// NotifyTarget 发送通知需要的收货人和商品名
type NotifyTarget struct {
	DetailOrderID int64
	ReceiverName  string
	ProductName   string
}

func (r *DetailOrderRepository) ListNotifyTargets(ctx context.Context, tx *gorm.DB, ids []int64) ([]*NotifyTarget, error) {
	if tx == nil {
		tx = r.db
	}
	var targets []*NotifyTarget
	err := tx.WithContext(ctx).
		Table("detail_orders AS d").
		Select("d.id AS detail_order_id, r.name AS receiver_name, p.name AS product_name").
		Joins("JOIN receivers AS r ON r.id = d.receiver_id").
		Joins("JOIN products AS p ON p.id = d.product_id").
		Where("d.id IN ?", ids).
		Order("d.id ASC").
		Scan(&targets).Error
	return targets, err
}

// ListSince 卖家在 since 之后下单的子订单，首页统计使用
func (r *DetailOrderRepository) ListSince(ctx context.Context, tx *gorm.DB, sellerID int64, since time.Time) ([]*model.DetailOrder, error) {
	if tx == nil {
		tx = r.db
	}
	var lines []*model.DetailOrder
	err := tx.WithContext(ctx).
		Where("seller_id = ? AND ordered_at >= ?", sellerID, since).
		Find(&lines).Error
	return lines, err
}

package service

import (
	"context"
	"errors"
	"time"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 子订单状态推进
//
// 人工操作（POST /order/change）和购买确认定时任务共用同一套条件更新：
// 批量 UPDATE 带 status_id = 当前状态 条件，影响行数必须等于请求的子订单数，
// 并发修改同一子订单时后到者整批失败，不会出现部分推进或重复日志。
type ProgressService struct {
	db         *gorm.DB
	log        *zap.Logger
	notifier   Notifier
	detailRepo *repository.DetailOrderRepository
}

func NewProgressService(db *gorm.DB, log *zap.Logger, notifier Notifier) *ProgressService {
	return &ProgressService{
		db:         db,
		log:        log.Named("progress"),
		notifier:   notifier,
		detailRepo: repository.NewDetailOrderRepository(db),
	}
}

type ProgressRequest struct {
	DetailOrderIDs []int64 `json:"id"`
	StatusID       int     `json:"status_id" binding:"required"`
}

type ProgressResult struct {
	Updated      int    `json:"updated"`
	NextStatusID int    `json:"status_id"`
	NextStatus   string `json:"status"`
}

// Progress 把一批子订单从 StatusID 推进到下一个状态
//
//   - 列表为空 C0006
//   - 任一子订单当前状态不是 StatusID，或不属于调用的卖家：O3011，整批不变
//   - StatusID 没有后继状态：O3012
//
// 管理员可以推进任意卖家的子订单，操作人记为调用者账户
func (s *ProgressService) Progress(ctx context.Context, caller *Caller, req *ProgressRequest) (*ProgressResult, error) {
	ids := dedupIDs(req.DetailOrderIDs)
	if len(ids) == 0 {
		return nil, errcode.ErrNoData
	}

	var sellerID int64
	if !caller.IsMaster {
		sellerID = caller.AccountID
	}

	var next int
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		matched, err := s.detailRepo.CountByStatus(ctx, conn, ids, req.StatusID, sellerID)
		if err != nil {
			return err
		}
		if matched != int64(len(ids)) {
			return errcode.ErrStatusMismatch
		}

		var ok bool
		next, ok = model.ResolveOrderProgress(req.StatusID)
		if !ok {
			return errcode.ErrInvalidTransition
		}

		return conn.Transaction(func(tx *gorm.DB) error {
			return s.advance(ctx, tx, ids, req.StatusID, next, caller.AccountID, sellerID)
		})
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	s.log.Info("子订单状态已推进",
		zap.Int64s("detail_order_ids", ids),
		zap.Int("from", req.StatusID),
		zap.Int("to", next),
		zap.Int64("updater_id", caller.AccountID))

	s.notify(ctx, ids, next)

	return &ProgressResult{
		Updated:      len(ids),
		NextStatusID: next,
		NextStatus:   model.OrderStatusName(next),
	}, nil
}

// advance 条件更新 + 每个子订单一条日志，必须在事务内调用
func (s *ProgressService) advance(ctx context.Context, tx *gorm.DB, ids []int64, from, to int, updaterID, sellerID int64) error {
	if err := s.detailRepo.UpdateStatusBatch(ctx, tx, ids, from, to, sellerID); err != nil {
		if errors.Is(err, repository.ErrDetailOrderStatusInvalid) {
			return errcode.ErrStatusMismatch
		}
		return err
	}

	logs := make([]*model.DetailOrderStatusLog, 0, len(ids))
	for _, id := range ids {
		logs = append(logs, &model.DetailOrderStatusLog{
			DetailOrderID: id,
			StatusID:      to,
			UpdaterID:     updaterID,
		})
	}
	return s.detailRepo.CreateStatusLogs(ctx, tx, logs)
}

func (s *ProgressService) notify(ctx context.Context, ids []int64, statusID int) {
	if s.notifier == nil {
		return
	}
	targets, err := s.detailRepo.ListNotifyTargets(ctx, nil, ids)
	if err != nil {
		s.log.Warn("查询通知信息失败", zap.Int64s("detail_order_ids", ids), zap.Error(err))
		return
	}

	now := time.Now()
	notes := make([]*model.Notification, 0, len(targets))
	for _, t := range targets {
		notes = append(notes, &model.Notification{
			DetailOrderID: t.DetailOrderID,
			BuyerName:     t.ReceiverName,
			ProductName:   t.ProductName,
			StatusID:      statusID,
			Status:        model.OrderStatusName(statusID),
			OccurredAt:    now,
		})
	}
	notifyBestEffort(ctx, s.log, s.notifier, notes)
}

// ============================================================================
// 购买确认
// ============================================================================

// ConfirmDelivered 把 배송완료 超过 delay 的子订单推进为 구매확정，操作人记为系统账户
// 返回本次确认的数量；与人工操作冲突时整批跳过，留给下一轮
func (s *ProgressService) ConfirmDelivered(ctx context.Context, delay time.Duration, systemAccountID int64, limit int) (int, error) {
	var ids []int64
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		var err error
		ids, err = s.detailRepo.FindStaleIDs(ctx, conn, model.OrderStatusDelivered, time.Now().Add(-delay), limit)
		if err != nil || len(ids) == 0 {
			return err
		}
		return conn.Transaction(func(tx *gorm.DB) error {
			return s.advance(ctx, tx, ids, model.OrderStatusDelivered, model.OrderStatusPurchaseConfirmed, systemAccountID, 0)
		})
	})
	if err != nil {
		return 0, wrapInternal(s.log, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	s.notify(ctx, ids, model.OrderStatusPurchaseConfirmed)
	return len(ids), nil
}

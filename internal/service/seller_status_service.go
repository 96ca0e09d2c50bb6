package service

import (
	"context"
	"errors"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SellerStatusService struct {
	db         *gorm.DB
	log        *zap.Logger
	sellerRepo *repository.SellerRepository
}

func NewSellerStatusService(db *gorm.DB, log *zap.Logger) *SellerStatusService {
	return &SellerStatusService{
		db:         db,
		log:        log.Named("seller_status"),
		sellerRepo: repository.NewSellerRepository(db),
	}
}

type SellerActionRequest struct {
	SellerID int64 `json:"seller_id" binding:"required"`
	ActionID int   `json:"action_id" binding:"required"`
	MasterID int64 `json:"-"`
}

type SellerActionResult struct {
	SellerID         int64  `json:"seller_id"`
	PreviousStatusID int    `json:"previous_status_id"`
	StatusID         int    `json:"status_id"`
	Status           string `json:"status"`
}

// ApplyAction 执行卖家状态操作，调用方必须已确认是管理员
//
// 未定义的动作ID直接 A1051，不查库；卖家不存在 A1031；
// 当前状态下不允许该操作 A1051，此时不产生任何写入。
// 更新带 status_id = 当前状态 条件，并发操作时后到者同样返回 A1051。
func (s *SellerStatusService) ApplyAction(ctx context.Context, req *SellerActionRequest) (*SellerActionResult, error) {
	if !model.IsSellerAction(req.ActionID) {
		return nil, errcode.ErrInvalidSellerAction
	}

	var result *SellerActionResult

	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		seller, err := s.sellerRepo.GetByAccountID(ctx, conn, req.SellerID)
		if err != nil {
			if errors.Is(err, repository.ErrSellerNotFound) {
				return errcode.ErrNoAccount
			}
			return err
		}

		next, ok := model.ResolveSellerAction(seller.StatusID, req.ActionID)
		if !ok {
			return errcode.ErrInvalidSellerAction
		}

		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := s.sellerRepo.UpdateStatus(ctx, tx, seller.AccountID, seller.StatusID, next, req.MasterID); err != nil {
				if errors.Is(err, repository.ErrSellerStatusInvalid) {
					return errcode.ErrInvalidSellerAction
				}
				return err
			}
			return s.sellerRepo.CreateStatusLog(ctx, tx, &model.SellerStatusLog{
				SellerID:  seller.AccountID,
				StatusID:  next,
				UpdaterID: req.MasterID,
			})
		})
		if err != nil {
			return err
		}

		result = &SellerActionResult{
			SellerID:         seller.AccountID,
			PreviousStatusID: seller.StatusID,
			StatusID:         next,
			Status:           model.SellerStatusName(next),
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	s.log.Info("卖家状态已变更",
		zap.Int64("seller_id", result.SellerID),
		zap.Int("from", result.PreviousStatusID),
		zap.Int("to", result.StatusID),
		zap.Int64("master_id", req.MasterID))
	return result, nil
}

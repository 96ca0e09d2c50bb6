package service

import (
	"context"
	"time"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HomeService 卖家首页统计
type HomeService struct {
	db          *gorm.DB
	log         *zap.Logger
	productRepo *repository.ProductRepository
	detailRepo  *repository.DetailOrderRepository
}

func NewHomeService(db *gorm.DB, log *zap.Logger) *HomeService {
	return &HomeService{
		db:          db,
		log:         log.Named("home"),
		productRepo: repository.NewProductRepository(db),
		detailRepo:  repository.NewDetailOrderRepository(db),
	}
}

func (s *HomeService) Dashboard(ctx context.Context, sellerID int64, now time.Time) (*model.Dashboard, error) {
	var (
		products []*model.Product
		lines    []*model.DetailOrder
	)
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		var err error
		products, err = s.productRepo.ListBySeller(ctx, conn, sellerID)
		if err != nil {
			return err
		}
		lines, err = s.detailRepo.ListSince(ctx, conn, sellerID, model.DashboardWindowStart(now))
		return err
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}
	return model.BuildDashboard(products, lines, now), nil
}

package service

import (
	"context"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductService struct {
	db          *gorm.DB
	log         *zap.Logger
	productRepo *repository.ProductRepository
}

func NewProductService(db *gorm.DB, log *zap.Logger) *ProductService {
	return &ProductService{
		db:          db,
		log:         log.Named("product"),
		productRepo: repository.NewProductRepository(db),
	}
}

// ProductListQuery 0/1 标志用指针区分“未传”
type ProductListQuery struct {
	Sale          *int   `form:"sale"`
	Display       *int   `form:"display"`
	Discount      *int   `form:"discount"`
	ProductName   string `form:"product_name"`
	ProductNumber int64  `form:"product_number"`
	ProductCode   int64  `form:"product_code"`
	SellerName    string `form:"seller_name"`
	Attribute     int    `form:"attribute"`
	From          string `form:"from"`
	Until         string `form:"until"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

type ProductList struct {
	Total    int64                        `json:"total"`
	Products []*repository.ProductListRow `json:"product_list"`
}

func flag(v *int) (*bool, error) {
	if v == nil {
		return nil, nil
	}
	if *v != 0 && *v != 1 {
		return nil, errcode.ErrInvalidType
	}
	b := *v == 1
	return &b, nil
}

// ListProducts 商品列表，卖家只能看到自己的商品
func (s *ProductService) ListProducts(ctx context.Context, caller *Caller, q *ProductListQuery) (*ProductList, error) {
	limit, offset, err := normalizePage(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	filter := &repository.ProductFilter{
		ProductName:   q.ProductName,
		ProductNumber: q.ProductNumber,
		ProductCode:   q.ProductCode,
		Limit:         limit,
		Offset:        offset,
	}
	if filter.Sale, err = flag(q.Sale); err != nil {
		return nil, err
	}
	if filter.Displayed, err = flag(q.Display); err != nil {
		return nil, err
	}
	if filter.Discount, err = flag(q.Discount); err != nil {
		return nil, err
	}
	if filter.From, filter.Until, err = parseDateRange(q.From, q.Until); err != nil {
		return nil, err
	}
	if caller.IsMaster {
		filter.SellerName = q.SellerName
		filter.AttributeID = q.Attribute
	} else {
		filter.SellerID = caller.AccountID
	}

	var out *ProductList
	err = database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		rows, total, err := s.productRepo.List(ctx, conn, filter)
		if err != nil {
			return err
		}
		out = &ProductList{Total: total, Products: rows}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}
	return out, nil
}

type ProductStatusRequest struct {
	ProductIDs []int64 `json:"product_ids" binding:"required"`
	Sales      *int    `json:"sales"`
	Displayed  *int    `json:"displayed"`
}

type ProductStatusResult struct {
	Updated int64 `json:"updated"`
}

// ChangeProductStatus 批量修改销售/展示状态
// 两个标志都没传 P2021；任一商品不存在（或不属于当前卖家）P2011，整批不修改
func (s *ProductService) ChangeProductStatus(ctx context.Context, caller *Caller, req *ProductStatusRequest) (*ProductStatusResult, error) {
	ids := dedupIDs(req.ProductIDs)
	if len(ids) == 0 {
		return nil, errcode.ErrNoData
	}
	if req.Sales == nil && req.Displayed == nil {
		return nil, errcode.ErrNoProductChange
	}
	sale, err := flag(req.Sales)
	if err != nil {
		return nil, err
	}
	displayed, err := flag(req.Displayed)
	if err != nil {
		return nil, err
	}

	var scope int64
	if !caller.IsMaster {
		scope = caller.AccountID
	}

	var updated int64
	err = database.Transact(ctx, s.db, s.log, func(tx *gorm.DB) error {
		count, err := s.productRepo.CountEditable(ctx, tx, ids, scope)
		if err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return errcode.ErrProductNotFound
		}
		updated, err = s.productRepo.UpdateFlags(ctx, tx, ids, sale, displayed, caller.AccountID)
		return err
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	s.log.Info("商品状态已修改",
		zap.Int64s("product_ids", ids),
		zap.Int64("updater_id", caller.AccountID),
		zap.Int64("updated", updated))
	return &ProductStatusResult{Updated: updated}, nil
}

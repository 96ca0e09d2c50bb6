package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims 登录令牌载荷
type Claims struct {
	AccountID int64 `json:"account_id"`
	IsMaster  bool  `json:"is_master"`
	jwt.RegisteredClaims
}

type AuthService struct {
	db          *gorm.DB
	log         *zap.Logger
	secret      []byte
	issuer      string
	ttl         time.Duration
	accountRepo *repository.AccountRepository
	sellerRepo  *repository.SellerRepository
}

func NewAuthService(db *gorm.DB, log *zap.Logger, cfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:          db,
		log:         log.Named("auth"),
		secret:      []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		ttl:         cfg.TTL(),
		accountRepo: repository.NewAccountRepository(db),
		sellerRepo:  repository.NewSellerRepository(db),
	}
}

type SigninRequest struct {
	Identification string `json:"identification" binding:"required"`
	Password       string `json:"password" binding:"required"`
}

type FilterCategory struct {
	CategoryID    interface{} `json:"category_id"`
	CategoryTitle string      `json:"category_title"`
}

type Filter struct {
	ID          string            `json:"id"`
	FilterTitle string            `json:"filterTitle"`
	Category    []*FilterCategory `json:"category"`
}

type SigninResult struct {
	Authorization string    `json:"Authorization"`
	IsMaster      bool      `json:"is_master"`
	FilterList    []*Filter `json:"filter_list"`
}

// Signin 登录
// 账号不存在 A1011；卖家仍在입점대기 A1014；密码错误 A1012
func (s *AuthService) Signin(ctx context.Context, req *SigninRequest) (*SigninResult, error) {
	var (
		account  *model.Account
		isMaster bool
		attrs    []*model.SellerAttribute
	)

	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		var err error
		account, err = s.accountRepo.GetByIdentification(ctx, conn, req.Identification)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return errcode.ErrInvalidUser
			}
			return err
		}

		seller, err := s.sellerRepo.GetByAccountID(ctx, conn, account.ID)
		switch {
		case err == nil:
			if seller.StatusID == model.SellerStatusPending {
				return errcode.ErrNotValidatedYet
			}
		case !errors.Is(err, repository.ErrSellerNotFound):
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
			return errcode.ErrWrongPassword
		}

		isMaster, err = s.accountRepo.IsMaster(ctx, conn, account.ID)
		if err != nil {
			return err
		}
		if isMaster {
			attrs, err = s.sellerRepo.ListAttributes(ctx, conn)
		}
		return err
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	token, err := s.IssueToken(account.ID, isMaster, time.Now())
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	s.log.Info("登录成功", zap.Int64("account_id", account.ID), zap.Bool("is_master", isMaster))
	return &SigninResult{
		Authorization: token,
		IsMaster:      isMaster,
		FilterList:    buildFilters(isMaster, attrs),
	}, nil
}

func (s *AuthService) IssueToken(accountID int64, isMaster bool, now time.Time) (string, error) {
	claims := &Claims{
		AccountID: accountID,
		IsMaster:  isMaster,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken 校验签名和有效期，失败统一返回 A1042
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, errcode.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid || claims.AccountID <= 0 {
		return nil, errcode.ErrInvalidToken
	}
	return claims, nil
}

// ResolveCaller 令牌中的管理员标志可能已过期，以数据库为准
func (s *AuthService) ResolveCaller(ctx context.Context, claims *Claims) (*Caller, error) {
	isMaster, err := s.accountRepo.IsMaster(ctx, nil, claims.AccountID)
	if err != nil {
		return nil, wrapInternal(s.log, fmt.Errorf("查询管理员失败: %w", err))
	}
	return &Caller{AccountID: claims.AccountID, IsMaster: isMaster}, nil
}

// buildFilters 商品列表页的筛选项，管理员额外有卖家名和卖家类别
func buildFilters(isMaster bool, attrs []*model.SellerAttribute) []*Filter {
	yesNo := func(id, title, yes, no string) *Filter {
		return &Filter{
			ID:          id,
			FilterTitle: title,
			Category: []*FilterCategory{
				{CategoryID: "", CategoryTitle: "전체"},
				{CategoryID: 1, CategoryTitle: yes},
				{CategoryID: 0, CategoryTitle: no},
			},
		}
	}

	filters := []*Filter{
		yesNo("sale", "판매여부", "판매", "미판매"),
		yesNo("display", "진열여부", "진열", "미진열"),
		yesNo("discount", "할인여부", "할인", "미할인"),
	}
	if !isMaster {
		return filters
	}

	attrFilter := &Filter{
		ID:          "attribute",
		FilterTitle: "셀러속성",
		Category:    []*FilterCategory{{CategoryID: "", CategoryTitle: "전체"}},
	}
	for _, a := range attrs {
		attrFilter.Category = append(attrFilter.Category, &FilterCategory{CategoryID: a.ID, CategoryTitle: a.Name})
	}
	filters = append(filters,
		&Filter{ID: "seller_name", FilterTitle: "셀러명", Category: []*FilterCategory{}},
		attrFilter,
	)
	return filters
}

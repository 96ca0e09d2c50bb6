package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/errcode"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	identificationPattern = regexp.MustCompile(`^[a-zA-Z][0-9a-zA-Z_-]{4,15}$`)
	contactPattern        = regexp.MustCompile(`^\d{3}-\d{4}-\d{4}$`)
	csContactPattern      = regexp.MustCompile(`^\d{2,3}-\d{3,4}-\d{4}$`)
	englishNamePattern    = regexp.MustCompile(`^[a-z][a-z0-9 ]*$`)
)

const dateLayout = "2006-01-02"

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

type AccountService struct {
	db          *gorm.DB
	log         *zap.Logger
	accountRepo *repository.AccountRepository
	sellerRepo  *repository.SellerRepository
	managerRepo *repository.ManagerRepository
}

func NewAccountService(db *gorm.DB, log *zap.Logger) *AccountService {
	return &AccountService{
		db:          db,
		log:         log.Named("account"),
		accountRepo: repository.NewAccountRepository(db),
		sellerRepo:  repository.NewSellerRepository(db),
		managerRepo: repository.NewManagerRepository(db),
	}
}

// ============================================================================
// 卖家入驻
// ============================================================================

type SignupRequest struct {
	Identification string `json:"identification" binding:"required"`
	Password       string `json:"password" binding:"required,max=20"`
	AccountTypeID  int    `json:"account_type_id" binding:"required"`
	Contact        string `json:"contact" binding:"required"`
	AttributeID    int    `json:"attribute_id" binding:"required"`
	KoreanName     string `json:"korean_name" binding:"required"`
	EnglishName    string `json:"english_name" binding:"required"`
	CsContact      string `json:"cs_contact" binding:"required"`
}

type SignupResult struct {
	AccountID int64  `json:"account_id"`
	Status    string `json:"status"`
}

func (r *SignupRequest) validate() error {
	if r.AccountTypeID != model.AccountTypeSeller {
		return errcode.ErrInvalidSellerInfo
	}
	if !identificationPattern.MatchString(r.Identification) ||
		!contactPattern.MatchString(r.Contact) ||
		!csContactPattern.MatchString(r.CsContact) ||
		!englishNamePattern.MatchString(r.EnglishName) {
		return errcode.ErrInvalidType
	}
	return nil
}

// Signup 卖家入驻
//
// 按顺序做四项唯一性检查：账号 A1021、卖家名 A1024、英文名 A1025、客服电话 A1026。
// 通过后在一个事务中写入 账户 -> 卖家(입점대기) -> 联系人(排序 1) -> 初始状态日志。
func (s *AccountService) Signup(ctx context.Context, req *SignupRequest) (*SignupResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var accountID int64
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		if err := s.checkUnique(ctx, conn, req); err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return conn.Transaction(func(tx *gorm.DB) error {
			account := &model.Account{
				Identification: req.Identification,
				Password:       string(hashed),
				AccountTypeID:  model.AccountTypeSeller,
			}
			if err := s.accountRepo.Create(ctx, tx, account); err != nil {
				return duplicateError(err)
			}

			seller := &model.Seller{
				AccountID:   account.ID,
				StatusID:    model.SellerStatusPending,
				AttributeID: req.AttributeID,
				KoreanName:  req.KoreanName,
				EnglishName: req.EnglishName,
				CsContact:   req.CsContact,
				Contact:     req.Contact,
				UpdaterID:   account.ID,
			}
			if err := s.sellerRepo.Create(ctx, tx, seller); err != nil {
				return duplicateError(err)
			}

			manager := &model.Manager{
				SellerID:  account.ID,
				Contact:   req.Contact,
				Ordering:  1,
				UpdaterID: account.ID,
			}
			if err := s.managerRepo.Create(ctx, tx, manager); err != nil {
				return err
			}

			if err := s.sellerRepo.CreateStatusLog(ctx, tx, &model.SellerStatusLog{
				SellerID:  account.ID,
				StatusID:  model.SellerStatusPending,
				UpdaterID: account.ID,
			}); err != nil {
				return err
			}

			accountID = account.ID
			return nil
		})
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}

	s.log.Info("卖家入驻申请", zap.Int64("account_id", accountID), zap.String("identification", req.Identification))
	return &SignupResult{
		AccountID: accountID,
		Status:    model.SellerStatusName(model.SellerStatusPending),
	}, nil
}

func (s *AccountService) checkUnique(ctx context.Context, conn *gorm.DB, req *SignupRequest) error {
	exists, err := s.accountRepo.ExistsIdentification(ctx, conn, req.Identification)
	if err != nil {
		return err
	}
	if exists {
		return errcode.ErrDuplicatedID
	}

	checks := []struct {
		column string
		value  string
		code   *errcode.Error
	}{
		{repository.SellerColumnKoreanName, req.KoreanName, errcode.ErrDuplicatedKoreanName},
		{repository.SellerColumnEnglishName, req.EnglishName, errcode.ErrDuplicatedEnglishName},
		{repository.SellerColumnCsContact, req.CsContact, errcode.ErrDuplicatedCsContact},
	}
	for _, c := range checks {
		exists, err := s.sellerRepo.ExistsByColumn(ctx, conn, c.column, c.value)
		if err != nil {
			return err
		}
		if exists {
			return c.code
		}
	}
	return nil
}

// duplicateError 检查之后被并发抢先写入时，唯一索引冲突按列映射回对应的错误码
// MySQL: Duplicate entry 'x' for key 'idx_sellers_korean_name'
// SQLite: UNIQUE constraint failed: sellers.korean_name
func duplicateError(err error) error {
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &myErr):
		if myErr.Number != mysqlDuplicateEntry {
			return err
		}
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		// sqlite 只能按文本判断
	default:
		return err
	}

	// 按列名区分具体是哪个唯一键
	msg := err.Error()
	switch {
	case strings.Contains(msg, "identification"):
		return errcode.ErrDuplicatedID.WithCause(err)
	case strings.Contains(msg, repository.SellerColumnKoreanName):
		return errcode.ErrDuplicatedKoreanName.WithCause(err)
	case strings.Contains(msg, repository.SellerColumnEnglishName):
		return errcode.ErrDuplicatedEnglishName.WithCause(err)
	case strings.Contains(msg, repository.SellerColumnCsContact):
		return errcode.ErrDuplicatedCsContact.WithCause(err)
	}
	return err
}

// ============================================================================
// 卖家列表（管理员）
// ============================================================================

type SellerListQuery struct {
	AccountID      int64  `form:"id"`
	Identification string `form:"identification"`
	EnglishName    string `form:"english_name"`
	KoreanName     string `form:"korean_name"`
	ManagerName    string `form:"manager_name"`
	StatusName     string `form:"status_name"`
	Contact        string `form:"contact"`
	Email          string `form:"email"`
	Attribute      string `form:"attribute"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

type SellerList struct {
	Total   int64                       `json:"total"`
	Sellers []*repository.SellerListRow `json:"seller_list"`
}

// ListSellers 卖家列表，不含已퇴점卖家；每行附带当前状态下可执行的操作
func (s *AccountService) ListSellers(ctx context.Context, q *SellerListQuery) (*SellerList, error) {
	limit, offset, err := normalizePage(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	filter := &repository.SellerFilter{
		AccountID:      q.AccountID,
		Identification: q.Identification,
		EnglishName:    q.EnglishName,
		KoreanName:     q.KoreanName,
		ManagerName:    q.ManagerName,
		Contact:        q.Contact,
		Email:          q.Email,
		Attribute:      q.Attribute,
		Limit:          limit,
		Offset:         offset,
	}
	if q.StatusName != "" {
		statusID, ok := model.SellerStatusID(q.StatusName)
		if !ok {
			return &SellerList{Sellers: []*repository.SellerListRow{}}, nil
		}
		filter.StatusID = statusID
	}
	filter.StartDate, filter.EndDate, err = parseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	var out *SellerList
	err = database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		rows, total, err := s.sellerRepo.List(ctx, conn, filter)
		if err != nil {
			return err
		}
		out = &SellerList{Total: total, Sellers: rows}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}
	return out, nil
}

// parseDateRange 解析 yyyy-mm-dd 日期区间，结束日期包含当天
// 开始日期晚于结束日期时按结束日期处理
func parseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, until *time.Time
	if start != "" {
		t, err := time.ParseInLocation(dateLayout, start, time.Local)
		if err != nil {
			return nil, nil, errcode.ErrInvalidType.WithCause(err)
		}
		from = &t
	}
	if end != "" {
		t, err := time.ParseInLocation(dateLayout, end, time.Local)
		if err != nil {
			return nil, nil, errcode.ErrInvalidType.WithCause(err)
		}
		if from != nil && from.After(t) {
			from = &t
		}
		next := t.AddDate(0, 0, 1)
		until = &next
	}
	return from, until, nil
}

// ============================================================================
// 卖家详情
// ============================================================================

type AttributeChoice struct {
	CategoryID    int    `json:"category_id"`
	CategoryTitle string `json:"category_title"`
	Check         bool   `json:"check"`
}

type SellerDetail struct {
	*repository.SellerDetailRow
	StatusLogs []*repository.SellerStatusLogRow `json:"seller_status_log"`
	Managers   []*model.Manager                 `json:"managers"`
	Attributes []*AttributeChoice               `json:"attributes,omitempty"`
}

// SellerDetail 卖家只能查看自己的信息，且看不到状态变更的操作人
func (s *AccountService) SellerDetail(ctx context.Context, caller *Caller, sellerID int64) (*SellerDetail, error) {
	if !caller.IsMaster && caller.AccountID != sellerID {
		return nil, errcode.ErrMasterOnly
	}

	var out *SellerDetail
	err := database.Scope(ctx, s.db, s.log, func(conn *gorm.DB) error {
		general, err := s.sellerRepo.GetDetail(ctx, conn, sellerID)
		if err != nil {
			if errors.Is(err, repository.ErrSellerNotFound) {
				return errcode.ErrNoAccount
			}
			return err
		}
		logs, err := s.sellerRepo.ListStatusLogs(ctx, conn, sellerID)
		if err != nil {
			return err
		}
		managers, err := s.managerRepo.ListActive(ctx, conn, sellerID)
		if err != nil {
			return err
		}

		out = &SellerDetail{
			SellerDetailRow: general,
			StatusLogs:      logs,
			Managers:        managers,
		}

		if !caller.IsMaster {
			for _, l := range logs {
				l.UpdatedBy = ""
			}
			return nil
		}

		attrs, err := s.sellerRepo.ListAttributes(ctx, conn)
		if err != nil {
			return err
		}
		out.Attributes = make([]*AttributeChoice, 0, len(attrs))
		for _, a := range attrs {
			out.Attributes = append(out.Attributes, &AttributeChoice{
				CategoryID:    a.ID,
				CategoryTitle: a.Name,
				Check:         a.ID == general.AttributeID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapInternal(s.log, err)
	}
	return out, nil
}

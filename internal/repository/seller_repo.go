package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sellerhub/internal/model"

	"gorm.io/gorm"
)

var (
	ErrSellerNotFound      = errors.New("卖家不存在")
	ErrSellerStatusInvalid = errors.New("卖家状态已变化")
)

// 允许做唯一性检查的列
const (
	SellerColumnKoreanName  = "korean_name"
	SellerColumnEnglishName = "english_name"
	SellerColumnCsContact   = "cs_contact"
)

var uniqueSellerColumns = map[string]bool{
	SellerColumnKoreanName:  true,
	SellerColumnEnglishName: true,
	SellerColumnCsContact:   true,
}

type SellerRepository struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

func (r *SellerRepository) Create(ctx context.Context, tx *gorm.DB, seller *model.Seller) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(seller).Error
}

func (r *SellerRepository) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID int64) (*model.Seller, error) {
	if tx == nil {
		tx = r.db
	}
	var seller model.Seller
	err := tx.WithContext(ctx).Where("account_id = ?", accountID).First(&seller).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	return &seller, nil
}

func (r *SellerRepository) ExistsByColumn(ctx context.Context, tx *gorm.DB, column, value string) (bool, error) {
	if !uniqueSellerColumns[column] {
		return false, fmt.Errorf("不支持的唯一性检查列: %s", column)
	}
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.WithContext(ctx).
		Model(&model.Seller{}).
		Where(column+" = ?", value).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatus 带条件的状态更新：只有当前状态仍为 fromStatus 时才更新
// 影响行数为 0 说明状态已被并发修改
func (r *SellerRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, accountID int64, fromStatus, toStatus int, updaterID int64) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Seller{}).
		Where("account_id = ? AND status_id = ?", accountID, fromStatus).
		Updates(map[string]interface{}{
			"status_id":  toStatus,
			"updater_id": updaterID,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSellerStatusInvalid
	}
	return nil
}

func (r *SellerRepository) CreateStatusLog(ctx context.Context, tx *gorm.DB, log *model.SellerStatusLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(log).Error
}

// ============================================================================
// 查询
// ============================================================================

type SellerStatusLogRow struct {
	StatusID  int       `json:"-"`
	Status    string    `gorm:"-" json:"status"`
	ChangedAt time.Time `json:"changed_at"`
	UpdatedBy string    `json:"updated_by,omitempty"` // 操作人的 identification
}

func (r *SellerRepository) ListStatusLogs(ctx context.Context, tx *gorm.DB, sellerID int64) ([]*SellerStatusLogRow, error) {
	if tx == nil {
		tx = r.db
	}
	var rows []*SellerStatusLogRow
	err := tx.WithContext(ctx).
		Table("seller_status_log AS l").
		Select("l.status_id, l.changed_at, COALESCE(a.identification, '') AS updated_by").
		Joins("LEFT JOIN accounts AS a ON a.id = l.updater_id").
		Where("l.seller_id = ?", sellerID).
		Order("l.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		row.Status = model.SellerStatusName(row.StatusID)
	}
	return rows, nil
}

type SellerDetailRow struct {
	SellerID       int64     `json:"seller_id"`
	Identification string    `json:"identification"`
	StatusID       int       `json:"status_id"`
	Status         string    `gorm:"-" json:"status"`
	KoreanName     string    `json:"korean_name"`
	EnglishName    string    `json:"english_name"`
	CsContact      string    `json:"cs_contact"`
	Contact        string    `json:"contact"`
	AttributeID    int       `json:"attribute_id"`
	Attribute      string    `json:"attribute"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *SellerRepository) GetDetail(ctx context.Context, tx *gorm.DB, sellerID int64) (*SellerDetailRow, error) {
	if tx == nil {
		tx = r.db
	}
	var rows []*SellerDetailRow
	err := tx.WithContext(ctx).
		Table("sellers AS s").
		Select(`s.account_id AS seller_id, a.identification, s.status_id, s.korean_name, s.english_name,
			s.cs_contact, s.contact, s.attribute_id, sa.name AS attribute, s.created_at`).
		Joins("JOIN accounts AS a ON a.id = s.account_id").
		Joins("JOIN seller_attributes AS sa ON sa.id = s.attribute_id").
		Where("s.account_id = ?", sellerID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrSellerNotFound
	}
	rows[0].Status = model.SellerStatusName(rows[0].StatusID)
	return rows[0], nil
}

func (r *SellerRepository) ListAttributes(ctx context.Context, tx *gorm.DB) ([]*model.SellerAttribute, error) {
	if tx == nil {
		tx = r.db
	}
	var attrs []*model.SellerAttribute
	err := tx.WithContext(ctx).Order("id ASC").Find(&attrs).Error
	return attrs, err
}

// SellerFilter 卖家列表筛选条件，零值表示不筛选
type SellerFilter struct {
	AccountID      int64
	Identification string
	EnglishName    string
	KoreanName     string
	ManagerName    string
	StatusID       int
	Contact        string
	Email          string
	Attribute      string
	StartDate      *time.Time
	EndDate        *time.Time
	Limit          int
	Offset         int
}

type SellerListRow struct {
	AccountID      int64                `json:"account_id"`
	Identification string               `json:"identification"`
	EnglishName    string               `json:"english_name"`
	KoreanName     string               `json:"korean_name"`
	ManagerName    string               `json:"manager_name"`
	StatusID       int                  `json:"status_id"`
	StatusName     string               `gorm:"-" json:"status_name"`
	Contact        string               `json:"contact"`
	Email          string               `json:"email"`
	Attribute      string               `json:"attribute"`
	CreatedAt      time.Time            `json:"created_at"`
	Actions        []model.SellerAction `gorm:"-" json:"actions"`
}

// List 卖家列表，不包含已퇴점的卖家，联系人取排序第一位
func (r *SellerRepository) List(ctx context.Context, tx *gorm.DB, f *SellerFilter) ([]*SellerListRow, int64, error) {
	if tx == nil {
		tx = r.db
	}

	base := func() *gorm.DB {
		q := tx.WithContext(ctx).
			Table("sellers AS s").
			Joins("JOIN accounts AS a ON a.id = s.account_id").
			Joins("LEFT JOIN managers AS m ON m.seller_id = s.account_id AND m.ordering = 1 AND m.is_deleted = ?", false).
			Joins("JOIN seller_attributes AS sa ON sa.id = s.attribute_id").
			Where("s.status_id <> ?", model.SellerStatusTerminated)

		if f.AccountID > 0 {
			q = q.Where("s.account_id = ?", f.AccountID)
		}
		if f.Identification != "" {
			q = q.Where("a.identification = ?", f.Identification)
		}
		if f.EnglishName != "" {
			q = q.Where("s.english_name = ?", f.EnglishName)
		}
		if f.KoreanName != "" {
			q = q.Where("s.korean_name = ?", f.KoreanName)
		}
		if f.ManagerName != "" {
			q = q.Where("m.name = ?", f.ManagerName)
		}
		if f.StatusID > 0 {
			q = q.Where("s.status_id = ?", f.StatusID)
		}
		if f.Contact != "" {
			q = q.Where("m.contact = ?", f.Contact)
		}
		if f.Email != "" {
			q = q.Where("m.email = ?", f.Email)
		}
		if f.Attribute != "" {
			q = q.Where("sa.name = ?", f.Attribute)
		}
		if f.StartDate != nil {
			q = q.Where("s.created_at >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("s.created_at < ?", *f.EndDate)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*SellerListRow
	err := base().
		Select(`s.account_id, a.identification, s.english_name, s.korean_name,
			COALESCE(m.name, '') AS manager_name, s.status_id,
			COALESCE(m.contact, '') AS contact, COALESCE(m.email, '') AS email,
			sa.name AS attribute, s.created_at`).
		Order("s.account_id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		row.StatusName = model.SellerStatusName(row.StatusID)
		row.Actions = model.SellerActionsFor(row.StatusID)
	}
	return rows, total, nil
}

package model

import (
	"time"
)

const (
	AccountTypeMaster = 1
	AccountTypeSeller = 2
)

// Account 登录账户，identification 创建后不可修改
type Account struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Identification string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"identification"`
	Password       string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt
	AccountTypeID  int       `gorm:"not null" json:"account_type_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type Master struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64  `gorm:"uniqueIndex;not null" json:"account_id"`
	Name      string `gorm:"type:varchar(50)" json:"name"`
}

func (Master) TableName() string {
	return "masters"
}

// SellerAttribute 卖家类别
type SellerAttribute struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);not null" json:"name"`
}

func (SellerAttribute) TableName() string {
	return "seller_attributes"
}

var DefaultSellerAttributes = []SellerAttribute{
	{ID: 1, Name: "쇼핑몰"},
	{ID: 2, Name: "마켓"},
	{ID: 3, Name: "로드샵"},
	{ID: 4, Name: "디자이너브랜드"},
	{ID: 5, Name: "제너럴브랜드"},
	{ID: 6, Name: "내셔널브랜드"},
	{ID: 7, Name: "뷰티"},
}

// Seller 与 Account 一对一，主键即账户ID
// StatusID 只允许通过卖家状态流转修改
type Seller struct {
	AccountID   int64     `gorm:"primaryKey;autoIncrement:false" json:"account_id"`
	StatusID    int       `gorm:"index;not null" json:"status_id"`
	AttributeID int       `gorm:"not null" json:"attribute_id"`
	KoreanName  string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"korean_name"`
	EnglishName string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"english_name"`
	CsContact   string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"cs_contact"`
	Contact     string    `gorm:"type:varchar(20)" json:"contact"`
	UpdaterID   int64     `json:"updater_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Seller) TableName() string {
	return "sellers"
}

// Manager 卖家的联系人，每个卖家最多 3 个，软删除
type Manager struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID  int64     `gorm:"index;not null" json:"seller_id"`
	Name      string    `gorm:"type:varchar(50)" json:"name"`
	Contact   string    `gorm:"type:varchar(20)" json:"contact"`
	Email     string    `gorm:"type:varchar(100)" json:"email"`
	Ordering  int       `gorm:"not null" json:"ordering"`
	IsDeleted bool      `gorm:"not null;default:false" json:"-"`
	UpdaterID int64     `json:"updater_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Manager) TableName() string {
	return "managers"
}

// SellerStatusLog 卖家状态变更历史，只追加
type SellerStatusLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID  int64     `gorm:"index;not null" json:"seller_id"`
	StatusID  int       `gorm:"not null" json:"status_id"`
	UpdaterID int64     `gorm:"not null" json:"updater_id"`
	ChangedAt time.Time `gorm:"autoCreateTime;index" json:"changed_at"`
}

func (SellerStatusLog) TableName() string {
	return "seller_status_log"
}

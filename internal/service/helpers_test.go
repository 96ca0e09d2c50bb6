package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []*model.Notification
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, notes []*model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, notes...)
	return nil
}

func (f *fakeNotifier) sent() []*model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Notification(nil), f.notes...)
}

func intPtr(v int) *int { return &v }

func seedMaster(t *testing.T, db *gorm.DB, identification string) int64 {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("master1234"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &model.Account{Identification: identification, Password: string(hashed), AccountTypeID: model.AccountTypeMaster}
	require.NoError(t, db.Create(account).Error)
	require.NoError(t, db.Create(&model.Master{AccountID: account.ID, Name: "관리자"}).Error)
	return account.ID
}

func seedSeller(t *testing.T, db *gorm.DB, identification string, statusID int) int64 {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("seller1234"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &model.Account{Identification: identification, Password: string(hashed), AccountTypeID: model.AccountTypeSeller}
	require.NoError(t, db.Create(account).Error)
	seller := &model.Seller{
		AccountID:   account.ID,
		StatusID:    statusID,
		AttributeID: 1,
		KoreanName:  "셀러" + identification,
		EnglishName: identification,
		CsContact:   fmt.Sprintf("02-%04d-0000", account.ID),
		Contact:     "010-1234-5678",
	}
	require.NoError(t, db.Create(seller).Error)
	require.NoError(t, db.Create(&model.Manager{SellerID: account.ID, Name: "담당자", Contact: seller.Contact, Email: identification + "@shop.kr", Ordering: 1}).Error)
	return account.ID
}

type productSeed struct {
	price      int64
	rate       *int
	min, max   int
	onSale     bool
	deleted    bool
	stock      int
	controlled bool
}

// seedProduct 创建商品和一个规格，返回 (商品, 规格, 颜色ID, 尺码ID)
func seedProduct(t *testing.T, db *gorm.DB, sellerID int64, s productSeed) (*model.Product, *model.Option, int64, int64) {
	t.Helper()
	color := &model.Color{Name: "Black"}
	size := &model.Size{Name: "Free"}
	require.NoError(t, db.Create(color).Error)
	require.NoError(t, db.Create(size).Error)

	product := &model.Product{
		SellerID:     sellerID,
		Name:         "오버핏 셔츠",
		Price:        decimal.NewFromInt(s.price),
		DiscountRate: s.rate,
		MinQuantity:  s.min,
		MaxQuantity:  s.max,
		IsOnSale:     s.onSale,
		IsDisplayed:  true,
		IsDeleted:    s.deleted,
	}
	require.NoError(t, db.Create(product).Error)

	option := &model.Option{
		ProductID:         product.ID,
		ColorID:           color.ID,
		SizeID:            size.ID,
		StockQuantity:     s.stock,
		IsStockControlled: s.controlled,
	}
	require.NoError(t, db.Create(option).Error)
	return product, option, color.ID, size.ID
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func stockOf(t *testing.T, db *gorm.DB, optionID int64) int {
	t.Helper()
	var o model.Option
	require.NoError(t, db.First(&o, optionID).Error)
	return o.StockQuantity
}

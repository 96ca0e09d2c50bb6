package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sellerhub/internal/infrastructure/lock"
	"sellerhub/internal/model"
	"sellerhub/pkg/errcode"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeLocker struct {
	mu       sync.Mutex
	keys     []string
	unlocked int
	lockErr  error
}

func (f *fakeLocker) NewLock(key string, _ time.Duration) lock.Lock {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return &fakeLock{owner: f}
}

type fakeLock struct {
	owner *fakeLocker
}

func (l *fakeLock) TryLock(context.Context) (bool, error) { return l.owner.lockErr == nil, l.owner.lockErr }

func (l *fakeLock) Lock(context.Context, time.Duration, int) error { return l.owner.lockErr }

func (l *fakeLock) Unlock(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	l.owner.unlocked++
	return nil
}

func placeRequest(productID, colorID, sizeID int64, qty int) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		ProductID:     productID,
		ColorID:       colorID,
		SizeID:        sizeID,
		Quantity:      qty,
		BuyerName:     "김구매",
		Contact:       "010-1111-2222",
		ZipCode:       "06236",
		StreetAddress: "서울시 강남구 테헤란로 1",
		DetailAddress: "101호",
	}
}

func TestPlaceOrderDiscountedTotalAndStock(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, option, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 10000, rate: intPtr(10), min: 1, max: 5, onSale: true, stock: 3, controlled: true,
	})

	notifier := &fakeNotifier{}
	locker := &fakeLocker{}
	svc := NewOrderService(db, zap.NewNop(), locker, notifier)

	result, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 2))
	require.NoError(t, err)

	assert.Equal(t, "18000", result.TotalPrice.String())
	assert.NotEmpty(t, result.OrderNo)
	assert.Equal(t, 1, stockOf(t, db, option.ID))

	var detail model.DetailOrder
	require.NoError(t, db.First(&detail, result.DetailOrderID).Error)
	assert.Equal(t, model.OrderStatusPreparingItem, detail.StatusID)
	assert.Equal(t, sellerID, detail.SellerID)
	assert.Equal(t, 2, detail.Quantity)
	require.NotNil(t, detail.DiscountRate)
	assert.Equal(t, 10, *detail.DiscountRate)

	var order model.Order
	require.NoError(t, db.First(&order, result.OrderID).Error)
	assert.Equal(t, "18000", order.TotalPrice.String())

	assert.Equal(t, int64(1), countRows(t, db, &model.DetailOrderStatusLog{}))

	assert.Equal(t, []string{lock.OptionStockKey(option.ID)}, locker.keys)
	assert.Equal(t, 1, locker.unlocked)

	notes := notifier.sent()
	require.Len(t, notes, 1)
	assert.Equal(t, "김구매", notes[0].BuyerName)
	assert.Equal(t, "오버핏 셔츠", notes[0].ProductName)
	assert.Equal(t, "상품준비", notes[0].Status)
}

func TestPlaceOrderInsufficientStockWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, option, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 10000, rate: intPtr(10), min: 1, max: 5, onSale: true, stock: 3, controlled: true,
	})
	notifier := &fakeNotifier{}
	svc := NewOrderService(db, zap.NewNop(), nil, notifier)

	_, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 4))
	assert.ErrorIs(t, err, errcode.ErrInsufficientStock)

	assert.Equal(t, 3, stockOf(t, db, option.ID))
	assert.Zero(t, countRows(t, db, &model.DetailOrder{}))
	assert.Zero(t, countRows(t, db, &model.Order{}))
	assert.Zero(t, countRows(t, db, &model.Receiver{}))
	assert.Empty(t, notifier.sent())
}

func TestPlaceOrderRollsBackWhenStockTakenInTransaction(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, option, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 10000, rate: intPtr(10), min: 1, max: 5, onSale: true, stock: 3, controlled: true,
	})

	// 写入收货人之后、扣减库存之前，同一事务里库存被别的订单抢走
	err := db.Callback().Create().After("gorm:create").Register("test:take_stock", func(tx *gorm.DB) {
		if tx.Statement.Table != "receivers" {
			return
		}
		err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Option{}).
			Where("id = ?", option.ID).
			UpdateColumn("stock_quantity", 1).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Create().Remove("test:take_stock") })

	notifier := &fakeNotifier{}
	svc := NewOrderService(db, zap.NewNop(), nil, notifier)

	_, err = svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 2))
	assert.ErrorIs(t, err, errcode.ErrInsufficientStock)

	assert.Equal(t, 3, stockOf(t, db, option.ID))
	assert.Zero(t, countRows(t, db, &model.Receiver{}))
	assert.Zero(t, countRows(t, db, &model.Order{}))
	assert.Zero(t, countRows(t, db, &model.DetailOrder{}))
	assert.Zero(t, countRows(t, db, &model.DetailOrderStatusLog{}))
	assert.Empty(t, notifier.sent())
}

func TestPlaceOrderFreezesPriceAndDiscount(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, _, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 10000, rate: intPtr(10), min: 1, max: 5, onSale: true, stock: 3, controlled: true,
	})
	svc := NewOrderService(db, zap.NewNop(), nil, nil)

	result, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 2))
	require.NoError(t, err)

	// 下单后改价、改折扣
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"price":         decimal.NewFromInt(50000),
		"discount_rate": 50,
	}).Error)

	var detail model.DetailOrder
	require.NoError(t, db.First(&detail, result.DetailOrderID).Error)
	assert.Equal(t, "10000", detail.Price.String())
	require.NotNil(t, detail.DiscountRate)
	assert.Equal(t, 10, *detail.DiscountRate)

	var order model.Order
	require.NoError(t, db.First(&order, result.OrderID).Error)
	assert.Equal(t, "18000", order.TotalPrice.String())

	dash, err := NewHomeService(db, zap.NewNop()).Dashboard(context.Background(), sellerID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "18000", dash.Statistics[model.DashboardDays-1].Sales.String())
}

func TestPlaceOrderUncontrolledStockIsUntouched(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, option, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 5000, min: 1, max: 10, onSale: true, stock: 0, controlled: false,
	})
	locker := &fakeLocker{}
	svc := NewOrderService(db, zap.NewNop(), locker, nil)

	result, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 7))
	require.NoError(t, err)

	assert.Equal(t, "35000", result.TotalPrice.String())
	assert.Equal(t, 0, stockOf(t, db, option.ID))
	assert.Empty(t, locker.keys)
}

func TestPlaceOrderQuantityOutsideRange(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, _, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 10000, min: 2, max: 5, onSale: true, stock: 100, controlled: true,
	})
	svc := NewOrderService(db, zap.NewNop(), nil, nil)

	for _, qty := range []int{1, 6} {
		_, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, qty))
		assert.ErrorIs(t, err, errcode.ErrOptionUnavailable, "quantity %d", qty)
	}
	assert.Zero(t, countRows(t, db, &model.DetailOrder{}))
	assert.Zero(t, countRows(t, db, &model.Receiver{}))
}

func TestPlaceOrderProductChecks(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	deleted, _, c1, s1 := seedProduct(t, db, sellerID, productSeed{price: 1000, min: 1, max: 5, onSale: true, deleted: true})
	offSale, _, c2, s2 := seedProduct(t, db, sellerID, productSeed{price: 1000, min: 1, max: 5, onSale: false})
	onSale, _, _, _ := seedProduct(t, db, sellerID, productSeed{price: 1000, min: 1, max: 5, onSale: true})

	svc := NewOrderService(db, zap.NewNop(), nil, nil)
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, placeRequest(9999, c1, s1, 1))
	assert.ErrorIs(t, err, errcode.ErrProductNotFound)

	_, err = svc.PlaceOrder(ctx, placeRequest(deleted.ID, c1, s1, 1))
	assert.ErrorIs(t, err, errcode.ErrProductDeleted)

	_, err = svc.PlaceOrder(ctx, placeRequest(offSale.ID, c2, s2, 1))
	assert.ErrorIs(t, err, errcode.ErrProductNotOnSale)

	// 颜色尺码属于别的商品
	_, err = svc.PlaceOrder(ctx, placeRequest(onSale.ID, c1, s1, 1))
	assert.ErrorIs(t, err, errcode.ErrOptionUnavailable)

	assert.Zero(t, countRows(t, db, &model.DetailOrder{}))
}

func TestPlaceOrderLockFailureIsInternal(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, option, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{
		price: 1000, min: 1, max: 5, onSale: true, stock: 3, controlled: true,
	})
	svc := NewOrderService(db, zap.NewNop(), &fakeLocker{lockErr: lock.ErrLockFailed}, nil)

	_, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 1))
	assert.ErrorIs(t, err, errcode.ErrInternal)
	assert.True(t, errors.Is(err, lock.ErrLockFailed))
	assert.Equal(t, 3, stockOf(t, db, option.ID))
}

func TestPlaceOrderNotifyFailureDoesNotFailOrder(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, _, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{price: 1000, min: 1, max: 5, onSale: true})
	svc := NewOrderService(db, zap.NewNop(), nil, &fakeNotifier{err: errors.New("outbox down")})

	_, err := svc.PlaceOrder(context.Background(), placeRequest(product.ID, colorID, sizeID, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, db, &model.DetailOrder{}))
}

func TestGetOrderOptions(t *testing.T) {
	db := setupTestDB(t)
	sellerID := seedSeller(t, db, "shopone", model.SellerStatusActive)
	product, _, colorID, sizeID := seedProduct(t, db, sellerID, productSeed{price: 1000, rate: intPtr(20), min: 1, max: 3, onSale: true})
	svc := NewOrderService(db, zap.NewNop(), nil, nil)

	opts, err := svc.GetOrderOptions(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, opts.Colors, 1)
	require.Len(t, opts.Sizes, 1)
	assert.Equal(t, colorID, opts.Colors[0].ID)
	assert.Equal(t, sizeID, opts.Sizes[0].ID)
	assert.Equal(t, 3, opts.MaxQuantity)

	require.NoError(t, db.Model(&model.Option{}).Where("product_id = ?", product.ID).Update("is_deleted", true).Error)
	_, err = svc.GetOrderOptions(context.Background(), product.ID)
	assert.ErrorIs(t, err, errcode.ErrOptionUnavailable)
}

func TestListOrdersScopesSellerAndBucket(t *testing.T) {
	db := setupTestDB(t)
	mine := seedSeller(t, db, "shopone", model.SellerStatusActive)
	other := seedSeller(t, db, "shoptwo", model.SellerStatusActive)
	p1, _, c1, s1 := seedProduct(t, db, mine, productSeed{price: 1000, min: 1, max: 5, onSale: true})
	p2, _, c2, s2 := seedProduct(t, db, other, productSeed{price: 1000, min: 1, max: 5, onSale: true})

	svc := NewOrderService(db, zap.NewNop(), nil, nil)
	ctx := context.Background()
	_, err := svc.PlaceOrder(ctx, placeRequest(p1.ID, c1, s1, 1))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, placeRequest(p2.ID, c2, s2, 1))
	require.NoError(t, err)

	list, err := svc.ListOrders(ctx, &Caller{AccountID: mine}, &OrderListQuery{Bucket: "prepareList"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	list, err = svc.ListOrders(ctx, &Caller{AccountID: 1, IsMaster: true}, &OrderListQuery{Bucket: model.OrderBucketAll})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	list, err = svc.ListOrders(ctx, &Caller{AccountID: 1, IsMaster: true}, &OrderListQuery{Bucket: "deliveryList"})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	_, err = svc.ListOrders(ctx, &Caller{AccountID: mine}, &OrderListQuery{Bucket: "unknownList"})
	assert.ErrorIs(t, err, errcode.ErrNoData)

	_, err = svc.ListOrders(ctx, &Caller{AccountID: mine}, &OrderListQuery{Bucket: "prepareList", Limit: 101})
	assert.ErrorIs(t, err, errcode.ErrInvalidPage)
}

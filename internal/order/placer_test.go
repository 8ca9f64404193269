package order

import (
	"context"
	"testing"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func newTestPlacer(t *testing.T) (*Placer, *gorm.DB, *inventory.Ledger) {
	t.Helper()
	db := newTestDB(t)
	ledger := inventory.NewLedger(db)
	return NewPlacer(db, ledger, nil), db, ledger
}

func seedProduct(t *testing.T, db *gorm.DB, code string, qty int, orig, final int64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ItemCode:      code,
		Name:          "Product " + code,
		Slug:          "product-" + code,
		Quantity:      qty,
		OriginalPrice: decimal.NewFromInt(orig),
		FinalPrice:    decimal.NewFromInt(final),
		DiscountType:  domain.DiscountFixed,
		DiscountValue: decimal.NewFromInt(orig - final),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func validDelivery() Delivery {
	return Delivery{
		Name:       "Ayu Lestari",
		Email:      "ayu@example.com",
		Phone:      "08123456789",
		Address:    "Jl. Kenanga 12",
		City:       "Bandung",
		PostalCode: "40115",
	}
}

func TestPlaceOrderComputesTotals(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	a := seedProduct(t, db, "NS-01", 10, 100, 80)
	b := seedProduct(t, db, "NS-02", 10, 50, 50)

	ord, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []CartItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 3},
		},
		Delivery:    validDelivery(),
		DeliveryFee: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	// subtotal = 2*100 + 3*50 = 350
	// line total = 2*80 + 3*50 = 310
	assert.True(t, ord.Subtotal.Equal(decimal.NewFromInt(350)), "subtotal %s", ord.Subtotal)
	assert.True(t, ord.DiscountTotal.Equal(decimal.NewFromInt(40)), "discount %s", ord.DiscountTotal)
	assert.True(t, ord.GrandTotal.Equal(decimal.NewFromInt(325)), "grand total %s", ord.GrandTotal)
	assert.Equal(t, domain.OrderStatusPending, ord.Status)
	assert.Equal(t, "cod", ord.PaymentMethod)
	assert.NotEmpty(t, ord.OrderNo)
	require.Len(t, ord.Items, 2)

	// stock was decremented
	var p domain.Product
	require.NoError(t, db.First(&p, a.ID).Error)
	assert.Equal(t, 8, p.Quantity)
}

func TestPlaceOrderStockGate(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 2, 100, 80)

	_, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 3}},
		Delivery: validDelivery(),
	})
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Contains(t, err.Error(), "Only 2 items left in stock")

	// quantity unchanged, no order persisted
	var got domain.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 2, got.Quantity)
	var count int64
	db.Model(&domain.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestPlaceOrderRollsBackWhenLaterLineFails(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	a := seedProduct(t, db, "NS-01", 10, 100, 80)
	b := seedProduct(t, db, "NS-02", 2, 50, 50)

	// Simulate a competing checkout landing between the availability
	// pre-check and the transactional decrement: drain product b while
	// the order row is being created.
	err := db.Callback().Create().Before("gorm:create").
		Register("test_concurrent_sale", func(tx *gorm.DB) {
			if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "orders" {
				return
			}
			tx.Session(&gorm.Session{NewDB: true}).Model(&domain.Product{}).
				Where("id = ?", b.ID).
				Update("quantity", gorm.Expr("quantity - ?", 1))
		})
	require.NoError(t, err)

	_, err = placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []CartItem{
			{ProductID: a.ID, Quantity: 4},
			{ProductID: b.ID, Quantity: 2},
		},
		Delivery: validDelivery(),
	})
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// everything rolled back: no order row, no stock movement
	var got domain.Product
	require.NoError(t, db.First(&got, a.ID).Error)
	assert.Equal(t, 10, got.Quantity, "first line decrement must be rolled back")
	var gotB domain.Product
	require.NoError(t, db.First(&gotB, b.ID).Error)
	assert.Equal(t, 2, gotB.Quantity)
	var count int64
	db.Model(&domain.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestPlaceOrderPriceSnapshotImmutable(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 10, 100, 80)

	ord, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 1}},
		Delivery: validDelivery(),
	})
	require.NoError(t, err)

	// later catalog edit
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Update("final_price", decimal.NewFromInt(5)).Error)

	var item domain.OrderItem
	require.NoError(t, db.Where("order_id = ?", ord.ID).First(&item).Error)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(80)), "snapshot price %s", item.Price)
	assert.True(t, item.OriginalPrice.Equal(decimal.NewFromInt(100)))
}

func TestPlaceOrderPriceFallbacks(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	// final price unset, falls back to original
	p := seedProduct(t, db, "NS-01", 10, 40, 0)

	ord, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 2}},
		Delivery: validDelivery(),
	})
	require.NoError(t, err)
	assert.True(t, ord.Items[0].Price.Equal(decimal.NewFromInt(40)))
	assert.True(t, ord.GrandTotal.Equal(decimal.NewFromInt(80)))
	assert.True(t, ord.DiscountTotal.IsZero())
}

func TestPlaceOrderZeroPriceProduct(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 10, 0, 0)

	ord, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 1}},
		Delivery: validDelivery(),
	})
	require.NoError(t, err)
	assert.True(t, ord.GrandTotal.IsZero())
	assert.True(t, ord.Subtotal.IsZero())
}

func TestPlaceOrderDefaultsQuantityAndClampsFee(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 10, 100, 100)

	ord, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:       []CartItem{{ProductID: p.ID, Quantity: -3}},
		Delivery:    validDelivery(),
		DeliveryFee: decimal.NewFromInt(-20),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ord.Items[0].Quantity)
	assert.True(t, ord.DeliveryFee.IsZero())
	assert.True(t, ord.GrandTotal.Equal(decimal.NewFromInt(100)))
}

func TestPlaceOrderValidation(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 10, 100, 100)

	var invalid *InvalidRequestError

	_, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{Delivery: validDelivery()})
	require.ErrorAs(t, err, &invalid)

	d := validDelivery()
	d.Name = ""
	_, err = placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 1}},
		Delivery: d,
	})
	require.ErrorAs(t, err, &invalid)

	d = validDelivery()
	d.Address = "   "
	_, err = placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:    []CartItem{{ProductID: p.ID, Quantity: 1}},
		Delivery: d,
	})
	require.ErrorAs(t, err, &invalid)
}

func TestPlaceOrderMissingProductRejectsWholeOrder(t *testing.T) {
	placer, db, _ := newTestPlacer(t)
	p := seedProduct(t, db, "NS-01", 10, 100, 100)

	_, err := placer.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items: []CartItem{
			{ProductID: p.ID, Quantity: 1},
			{ProductID: 424242, Quantity: 1},
		},
		Delivery: validDelivery(),
	})
	var nf *inventory.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.EqualValues(t, 424242, nf.ProductID)

	var got domain.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 10, got.Quantity)
}

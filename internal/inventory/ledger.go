// Package inventory owns the stock side of the product catalog: threshold
// queries for the alert cycle and atomic quantity movements for checkout
// and restocking.
package inventory

import (
	"context"
	"errors"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"gorm.io/gorm"
)

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to the given transaction handle so stock
// movements can join an enclosing transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

func (l *Ledger) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := l.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (l *Ledger) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	var products []domain.Product
	err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ProductsWithThreshold returns every product with alerting enabled,
// i.e. min_quantity > 0.
func (l *Ledger) ProductsWithThreshold(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := l.db.WithContext(ctx).
		Where("min_quantity > ?", 0).
		Order("item_code ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Decrement atomically subtracts qty from a product's stock. The guard
// condition quantity >= qty makes overselling impossible under concurrent
// checkouts: a decrement that would go negative affects zero rows and is
// reported as InsufficientStockError instead.
func (l *Ledger) Decrement(ctx context.Context, id int64, qty int) error {
	if qty < 1 {
		qty = 1
	}
	res := l.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var p domain.Product
		err := l.db.WithContext(ctx).First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{ProductID: id}
		}
		if err != nil {
			return err
		}
		return &InsufficientStockError{
			ProductID: id,
			Name:      p.Name,
			Requested: qty,
			Available: p.Quantity,
		}
	}
	return nil
}

// Restock atomically adds qty to a product's stock.
func (l *Ledger) Restock(ctx context.Context, id int64, qty int) error {
	if qty < 1 {
		return &InvalidRequestError{Reason: "restock quantity must be >= 1"}
	}
	res := l.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{ProductID: id}
	}
	return nil
}

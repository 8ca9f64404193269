// Package order implements checkout: cart validation, price
// snapshotting, total arithmetic and the transactional stock decrement.
package order

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/inventory"
	"github.com/kridmal/nerd-stationery-sub000/pkg/common"
	"github.com/kridmal/nerd-stationery-sub000/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TopicOrderCreated is published on the event bus after a successful
// checkout, with the created *domain.Order as payload.
const TopicOrderCreated = "order.created"

type CartItem struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

type Delivery struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	DeliveryOption string `json:"delivery_option"`
}

type PlaceOrderRequest struct {
	Items         []CartItem      `json:"items"`
	Delivery      Delivery        `json:"delivery"`
	PaymentMethod string          `json:"payment_method"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
}

type Placer struct {
	db     *gorm.DB
	ledger *inventory.Ledger
	bus    EventBus.Bus
}

func NewPlacer(db *gorm.DB, ledger *inventory.Ledger, bus EventBus.Bus) *Placer {
	return &Placer{db: db, ledger: ledger, bus: bus}
}

// PlaceOrder validates the cart, freezes a price snapshot per line,
// persists the order and decrements stock. Order creation and all stock
// decrements run in one transaction; a line whose conditional decrement
// fails aborts and rolls back the whole order, so stock can never be
// oversold and no partial orders exist.
func (p *Placer) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, &InvalidRequestError{Reason: "cart is empty"}
	}
	if strings.TrimSpace(req.Delivery.Name) == "" {
		return nil, &InvalidRequestError{Reason: "delivery name is required"}
	}
	if strings.TrimSpace(req.Delivery.Address) == "" {
		return nil, &InvalidRequestError{Reason: "delivery address is required"}
	}

	lines := make([]CartItem, len(req.Items))
	ids := make([]int64, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		lines[i] = item
		ids = append(ids, item.ProductID)
	}

	deliveryFee := req.DeliveryFee
	if deliveryFee.IsNegative() {
		deliveryFee = decimal.Zero
	}

	products, err := p.ledger.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "fetch cart products")
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, prod := range products {
		byID[prod.ID] = prod
	}

	// Availability pre-check against the current snapshot. This exists
	// for the user-facing message; the transactional conditional
	// decrement below remains the authoritative gate.
	for _, line := range lines {
		prod, ok := byID[line.ProductID]
		if !ok {
			return nil, &inventory.NotFoundError{ProductID: line.ProductID}
		}
		if line.Quantity > prod.Quantity {
			return nil, &inventory.InsufficientStockError{
				ProductID: prod.ID,
				Name:      prod.Name,
				Requested: line.Quantity,
				Available: prod.Quantity,
			}
		}
	}

	now := time.Now()
	ord := &domain.Order{
		ID:             common.UUIDint64(),
		OrderNo:        uuid.NewString(),
		Status:         domain.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		DeliveryFee:    deliveryFee,
		DeliveryName:   strings.TrimSpace(req.Delivery.Name),
		DeliveryEmail:  strings.TrimSpace(req.Delivery.Email),
		DeliveryPhone:  strings.TrimSpace(req.Delivery.Phone),
		Address:        strings.TrimSpace(req.Delivery.Address),
		City:           strings.TrimSpace(req.Delivery.City),
		PostalCode:     strings.TrimSpace(req.Delivery.PostalCode),
		DeliveryOption: req.Delivery.DeliveryOption,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ord.PaymentMethod == "" {
		ord.PaymentMethod = "cod"
	}
	if ord.DeliveryOption == "" {
		ord.DeliveryOption = domain.DeliveryStandard
	}

	subtotal := decimal.Zero
	lineTotal := decimal.Zero
	for _, line := range lines {
		prod := byID[line.ProductID]

		origPrice := prod.OriginalPrice
		finalPrice := prod.FinalPrice
		if origPrice.IsZero() {
			origPrice = finalPrice
		}
		if finalPrice.IsZero() {
			finalPrice = origPrice
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(origPrice.Mul(qty))
		lineTotal = lineTotal.Add(finalPrice.Mul(qty))

		ord.Items = append(ord.Items, domain.OrderItem{
			ID:            common.UUIDint64(),
			OrderID:       ord.ID,
			ProductID:     prod.ID,
			Name:          prod.Name,
			Slug:          prod.Slug,
			Image:         prod.Image,
			Quantity:      line.Quantity,
			Price:         finalPrice,
			OriginalPrice: origPrice,
			DiscountType:  prod.DiscountType,
			DiscountValue: prod.DiscountValue,
			Variations:    prod.Variations,
			CreatedAt:     now,
		})
	}

	ord.Subtotal = subtotal
	ord.DiscountTotal = subtotal.Sub(lineTotal)
	if ord.DiscountTotal.IsNegative() {
		ord.DiscountTotal = decimal.Zero
	}
	ord.GrandTotal = lineTotal.Add(deliveryFee)

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ord).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		txLedger := p.ledger.WithTx(tx)
		for _, line := range lines {
			if err := txLedger.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrCounter("orders_created", 1)
	if p.bus != nil {
		p.bus.Publish(TopicOrderCreated, ord)
	}
	return ord, nil
}

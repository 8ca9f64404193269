package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order lifecycle states. New orders always start as pending; the
// transitions themselves are driven from the back office.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Delivery options supported at checkout.
const (
	DeliveryStandard = "standard"
	DeliveryExpress  = "express"
)

// Order is an append-only checkout record; only Status is mutable after
// creation and rows are never deleted.
type Order struct {
	ID            int64           `json:"id,string" form:"id"`
	OrderNo       string          `gorm:"uniqueIndex;size:64" json:"order_no"` // Public order reference
	Status        string          `gorm:"size:16;index" json:"status" form:"status"`
	PaymentMethod string          `gorm:"size:32" json:"payment_method" form:"payment_method"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_total"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(12,2)" json:"delivery_fee"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(12,2)" json:"grand_total"`

	// Delivery contact, denormalized onto the order row
	DeliveryName   string `json:"delivery_name" form:"delivery_name"`
	DeliveryEmail  string `json:"delivery_email" form:"delivery_email"`
	DeliveryPhone  string `json:"delivery_phone" form:"delivery_phone"`
	Address        string `json:"address" form:"address"`
	City           string `json:"city" form:"city"`
	PostalCode     string `gorm:"size:16" json:"postal_code" form:"postal_code"`
	DeliveryOption string `gorm:"size:16" json:"delivery_option" form:"delivery_option"`

	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is the frozen price/identity snapshot of one cart line.
// It is immutable once the order is created; later product edits do not
// flow back into it.
type OrderItem struct {
	ID            int64           `json:"id,string"`
	OrderID       int64           `gorm:"index" json:"order_id,string"`
	ProductID     int64           `gorm:"index" json:"product_id,string"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Image         string          `json:"image"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`          // Final unit price at order time
	OriginalPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"original_price"` // List unit price at order time
	DiscountType  string          `gorm:"size:16" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_value"`
	Variations    string          `gorm:"type:text" json:"variations"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

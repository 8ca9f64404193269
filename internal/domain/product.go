package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types accepted on a product.
const (
	DiscountNone       = "none"
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Product catalog item. Quantity is mutated only by order placement
// (decrement) and restock operations and never goes negative.
type Product struct {
	ID            int64           `json:"id,string" form:"id"`
	ItemCode      string          `gorm:"uniqueIndex;size:64" json:"item_code" form:"item_code"` // Stock keeping code, unique
	Name          string          `gorm:"index" json:"name" form:"name"`
	Slug          string          `gorm:"index;size:255" json:"slug" form:"slug"`
	Description   string          `json:"description" form:"description"`
	Image         string          `gorm:"size:1024" json:"image" form:"image"`
	Quantity      int             `json:"quantity" form:"quantity"`                      // Current stock on hand
	MinQuantity   int             `json:"min_quantity" form:"min_quantity"`              // Low-stock threshold, 0 disables alerting
	OriginalPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"original_price"`      // List price
	FinalPrice    decimal.Decimal `gorm:"type:decimal(12,2)" json:"final_price"`         // Selling price after discount
	DiscountType  string          `gorm:"size:16" json:"discount_type" form:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_value"`
	Variations    string          `gorm:"type:text" json:"variations" form:"variations"` // JSON-encoded variation list
	Status        string          `gorm:"size:16;index" json:"status" form:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

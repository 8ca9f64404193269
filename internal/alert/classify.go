package alert

import (
	"strconv"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
)

// Classify splits products into the low-stock and out-of-stock sets.
// Only products with min_quantity > 0 participate; a product lands in at
// most one set.
func Classify(products []domain.Product) (low, out []domain.Product) {
	for _, p := range products {
		if p.MinQuantity <= 0 {
			continue
		}
		switch {
		case p.Quantity == 0:
			out = append(out, p)
		case p.Quantity < p.MinQuantity:
			low = append(low, p)
		}
	}
	return low, out
}

// ValidSendHour reports whether s is a zero-padded hour "00".."23".
func ValidSendHour(s string) bool {
	if len(s) != 2 {
		return false
	}
	h, err := strconv.Atoi(s)
	return err == nil && h >= 0 && h <= 23
}

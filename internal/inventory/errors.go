package inventory

import "fmt"

// NotFoundError is returned when a referenced product no longer exists.
type NotFoundError struct {
	ProductID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a requested quantity exceeds
// the available stock. The message is user-facing.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Only %d items left in stock for %s", e.Available, e.Name)
}

// InvalidRequestError is returned for malformed or missing input.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return e.Reason
}

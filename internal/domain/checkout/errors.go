package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrEmptySelection is returned when no items were selected.
var ErrEmptySelection = errors.New("items required")

// ErrTotalOutOfRange is returned when a line total or the subtotal does not
// fit in int64.
var ErrTotalOutOfRange = errors.New("order total out of range")

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item quantity outside
// [1, MaxQuantity].
type InvalidQuantityError struct {
	ProductID string
	Quantity  int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be between 1 and %d for product %s", MaxQuantity, e.ProductID)
}

package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Errors a Repository returns when a redemption would break a coupon cap.
var (
	ErrUsageExhausted      = errors.New("coupon usage limit reached")
	ErrPerUserLimitReached = errors.New("coupon per-user limit reached")
)

// Order represents a completed customer order with pricing and discount details.
type Order struct {
	ID         string
	UserID     string
	Items      []OrderItem
	Subtotal   int64
	Discount   int64
	Total      int64
	CouponCode string
	CreatedAt  time.Time
}

// OrderItem represents a single line item in an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Redemption records a coupon use to be committed together with an order.
type Redemption struct {
	Code   string
	UserID string
}

// Repository defines persistence operations for orders.
//
// Create stores the order and, when r is not nil, atomically increments the
// coupon's usage counter and records the redemption. Caps are checked
// against the stored coupon, not the one used for pricing. It returns
// ErrUsageExhausted or ErrPerUserLimitReached when a cap would be exceeded,
// in which case nothing is stored.
type Repository interface {
	Create(ctx context.Context, o *Order, r *Redemption) error
}

package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage takes a percentage off the applicable subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off, capped at the applicable subtotal.
	DiscountFixed DiscountType = "fixed_amount"
)

// Scope restricts which line items a coupon can discount.
type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeProducts   Scope = "products"
	ScopeCategories Scope = "categories"
)

// ErrNotFound is returned by repositories when no coupon has the given code.
var ErrNotFound = errors.New("coupon not found")

// IDSet is a set of product or category ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Coupon is a promotional coupon as configured by an admin. The engine only
// reads coupons.
type Coupon struct {
	Code            string
	Description     string
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	MinOrderValue   int64
	MaxUsage        *int64 // nil means unlimited
	UsageCount      int64
	MaxUsagePerUser int64
	StartDate       *time.Time
	ExpiryDate      time.Time
	IsActive        bool
	Scope           Scope
	ApplicableIDs   IDSet
}

// Validate rejects definitions an admin could not have saved: unknown type
// or scope, a non-positive value, a percentage above 100, or an empty
// validity window.
func (c *Coupon) Validate() error {
	switch {
	case c.Code == "" || c.Code != NormalizeCode(c.Code):
		return errors.Errorf("code %q is not normalized", c.Code)
	case c.DiscountType != DiscountPercentage && c.DiscountType != DiscountFixed:
		return errors.Errorf("unknown discount type %q", c.DiscountType)
	case c.Scope != ScopeAll && c.Scope != ScopeProducts && c.Scope != ScopeCategories:
		return errors.Errorf("unknown scope %q", c.Scope)
	case !c.DiscountValue.IsPositive():
		return errors.New("discount value must be positive")
	case c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(hundred):
		return errors.New("percentage above 100")
	case c.MinOrderValue < 0:
		return errors.New("negative minimum order value")
	case c.MaxUsage != nil && *c.MaxUsage <= 0:
		return errors.New("max usage must be positive")
	case c.ExpiryDate.IsZero():
		return errors.New("expiry date required")
	case c.StartDate != nil && !c.ExpiryDate.After(*c.StartDate):
		return errors.New("expiry date must be after start date")
	}
	return nil
}

// PerUserRemaining returns how many more times a user who already redeemed
// the coupon redeemed times may use it. Enforcement is up to the caller.
func (c *Coupon) PerUserRemaining(redeemed int64) int64 {
	if c.MaxUsagePerUser <= 0 {
		return 0
	}
	return max(c.MaxUsagePerUser-redeemed, 0)
}

// NormalizeCode canonicalizes a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LineItem is one selected cart entry at computation time.
type LineItem struct {
	ProductID  string
	CategoryID *string
	UnitPrice  int64
	Quantity   int64
}

// Total returns unit price times quantity.
func (li LineItem) Total() int64 {
	return li.UnitPrice * li.Quantity
}

// DiscountResult is the outcome of computing a coupon against a selection.
type DiscountResult struct {
	DiscountAmount     int64
	ApplicableSubtotal int64
	Rejection          Reason
}

// Applied reports whether the coupon produced a usable discount.
func (r DiscountResult) Applied() bool {
	return r.Rejection == ReasonNone
}

// Repository is the coupon-read collaborator. Returned coupons are not
// guaranteed to be active or within their validity window.
type Repository interface {
	List(ctx context.Context) ([]Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

package coupon

import (
	"time"

	"github.com/xenking/storefront/internal/domain/catalog"
)

// Evaluate runs the lifecycle checks and, if they pass, the discount
// calculation. It is the single decision point for applying a coupon.
func Evaluate(c *Coupon, items []LineItem, idx *catalog.Index, now time.Time) DiscountResult {
	if r := CheckLifecycle(c, now); r != ReasonNone {
		return DiscountResult{
			ApplicableSubtotal: ApplicableSubtotal(items, c, idx),
			Rejection:          r,
		}
	}
	return ComputeDiscount(c, items, idx)
}

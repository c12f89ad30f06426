package coupon

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/catalog"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount calculates the discount an applied coupon yields on the
// selection, restricted to the items it applies to.
//
// The result is a pure function of its inputs: the coupon panel and the
// order summary both call it and must agree exactly. Lifecycle checks are
// the caller's concern (see CheckLifecycle).
func ComputeDiscount(c *Coupon, items []LineItem, idx *catalog.Index) DiscountResult {
	subtotal := ApplicableSubtotal(items, c, idx)
	res := DiscountResult{ApplicableSubtotal: subtotal}

	switch {
	case subtotal == 0:
		res.Rejection = ReasonNotApplicableToSelection
		return res
	case !MeetsMinOrder(subtotal, c):
		res.Rejection = ReasonMinOrderNotMet
		return res
	}

	var raw decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		raw = decimal.NewFromInt(subtotal).Mul(c.DiscountValue).Div(hundred)
	case DiscountFixed:
		raw = c.DiscountValue
	default:
		res.Rejection = ReasonInvalidCoupon
		return res
	}

	res.DiscountAmount = roundHalfUp(clamp(raw, subtotal))
	return res
}

// clamp bounds the raw discount to [0, subtotal].
func clamp(raw decimal.Decimal, subtotal int64) decimal.Decimal {
	if raw.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(raw, decimal.NewFromInt(subtotal))
}

// roundHalfUp rounds a non-negative amount to whole currency units.
// Round(0) rounds half away from zero, which is half-up for non-negatives.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

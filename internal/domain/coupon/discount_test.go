package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name         string
		coupon       Coupon
		items        []LineItem
		wantAmount   int64
		wantSubtotal int64
		wantReason   Reason
	}{
		{
			name:         "percentage on whole cart",
			coupon:       percentCoupon("SAVE10", 10),
			items:        []LineItem{item("p1", "shirts", 100_000, 2)},
			wantAmount:   20_000,
			wantSubtotal: 200_000,
		},
		{
			name:         "fixed amount",
			coupon:       fixedCoupon("FIVE", 5_000),
			items:        []LineItem{item("p1", "shirts", 20_000, 1)},
			wantAmount:   5_000,
			wantSubtotal: 20_000,
		},
		{
			name:         "fixed amount clamps to applicable subtotal",
			coupon:       fixedCoupon("BIG", 50_000),
			items:        []LineItem{item("p1", "shirts", 12_000, 1)},
			wantAmount:   12_000,
			wantSubtotal: 12_000,
		},
		{
			name:         "hundred percent clamps",
			coupon:       percentCoupon("FREE", 100),
			items:        []LineItem{item("p1", "shirts", 75_000, 1)},
			wantAmount:   75_000,
			wantSubtotal: 75_000,
		},
		{
			name:         "half rounds up",
			coupon:       percentCoupon("TEN", 10),
			items:        []LineItem{item("p1", "shirts", 15, 1)},
			wantAmount:   2,
			wantSubtotal: 15,
		},
		{
			name:         "below half rounds down",
			coupon:       percentCoupon("TEN", 10),
			items:        []LineItem{item("p1", "shirts", 14, 1)},
			wantAmount:   1,
			wantSubtotal: 14,
		},
		{
			name: "fractional percentage",
			coupon: func() Coupon {
				c := percentCoupon("EIGHTH", 0)
				c.DiscountValue = decimal.RequireFromString("12.5")
				return c
			}(),
			items:        []LineItem{item("p1", "shirts", 101, 1)},
			wantAmount:   13,
			wantSubtotal: 101,
		},
		{
			name:         "only applicable items are discounted",
			coupon:       scoped(percentCoupon("SHOES20", 20), ScopeCategories, "shoes"),
			items:        []LineItem{item("p1", "sneakers", 1_000, 1), item("p2", "shirts", 5_000, 1)},
			wantAmount:   200,
			wantSubtotal: 1_000,
		},
		{
			name:         "nothing applicable",
			coupon:       scoped(percentCoupon("BOOKS", 20), ScopeCategories, "books"),
			items:        []LineItem{item("p1", "shirts", 5_000, 1)},
			wantReason:   ReasonNotApplicableToSelection,
			wantSubtotal: 0,
		},
		{
			name:         "applicable items priced at zero",
			coupon:       percentCoupon("ALL", 20),
			items:        []LineItem{item("p1", "shirts", 0, 3)},
			wantReason:   ReasonNotApplicableToSelection,
			wantSubtotal: 0,
		},
		{
			name: "minimum checked on applicable subset",
			coupon: func() Coupon {
				c := scoped(fixedCoupon("SHOE", 100), ScopeCategories, "shoes")
				c.MinOrderValue = 1_000
				return c
			}(),
			items:        []LineItem{item("p1", "shoes", 900, 1), item("p2", "shirts", 900, 1)},
			wantReason:   ReasonMinOrderNotMet,
			wantSubtotal: 900,
		},
		{
			name: "unknown discount type",
			coupon: func() Coupon {
				c := percentCoupon("ODD", 10)
				c.DiscountType = DiscountType("bogo")
				return c
			}(),
			items:        []LineItem{item("p1", "shirts", 100, 1)},
			wantReason:   ReasonInvalidCoupon,
			wantSubtotal: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(&tt.coupon, tt.items, idx)
			assert.Equal(t, DiscountResult{
				DiscountAmount:     tt.wantAmount,
				ApplicableSubtotal: tt.wantSubtotal,
				Rejection:          tt.wantReason,
			}, got)
		})
	}
}

func TestComputeDiscount_Deterministic(t *testing.T) {
	idx := testIndex()
	c := scoped(percentCoupon("SHOES", 15), ScopeCategories, "shoes")
	items := []LineItem{item("p1", "sneakers", 3_333, 3), item("p2", "shirts", 999, 1)}

	first := ComputeDiscount(&c, items, idx)
	for range 50 {
		assert.Equal(t, first, ComputeDiscount(&c, items, idx))
	}
}

func TestComputeDiscount_Bounds(t *testing.T) {
	idx := testIndex()
	items := []LineItem{
		item("p1", "sneakers", 12_345, 2),
		item("p2", "shirts", 999, 7),
		item("p3", "books", 50, 1),
		item("p4", "", 1_000, 1),
	}
	coupons := []Coupon{
		percentCoupon("P1", 1),
		percentCoupon("P33", 33),
		percentCoupon("P100", 100),
		fixedCoupon("F1", 1),
		fixedCoupon("F1M", 1_000_000),
		scoped(percentCoupon("SC", 50), ScopeCategories, "apparel"),
		scoped(fixedCoupon("SP", 10_000), ScopeProducts, "p3"),
	}

	for _, c := range coupons {
		res := ComputeDiscount(&c, items, idx)
		assert.GreaterOrEqual(t, res.DiscountAmount, int64(0), c.Code)
		assert.LessOrEqual(t, res.DiscountAmount, res.ApplicableSubtotal, c.Code)
		assert.LessOrEqual(t, res.ApplicableSubtotal, Subtotal(items), c.Code)
	}
}

func TestComputeDiscount_RemovingItemsNeverIncreasesDiscount(t *testing.T) {
	idx := testIndex()
	items := []LineItem{
		item("p1", "sneakers", 40_000, 1),
		item("p2", "shoes", 25_000, 2),
		item("p3", "shirts", 10_000, 3),
		item("p4", "books", 5_000, 1),
	}
	withMin := scoped(fixedCoupon("SHOE", 30_000), ScopeCategories, "shoes")
	withMin.MinOrderValue = 50_000
	coupons := []Coupon{
		percentCoupon("ALL10", 10),
		fixedCoupon("F20K", 20_000),
		withMin,
		scoped(percentCoupon("P", 25), ScopeProducts, "p2", "p4"),
	}

	for _, c := range coupons {
		full := ComputeDiscount(&c, items, idx)
		for drop := range items {
			smaller := make([]LineItem, 0, len(items)-1)
			smaller = append(smaller, items[:drop]...)
			smaller = append(smaller, items[drop+1:]...)
			res := ComputeDiscount(&c, smaller, idx)
			assert.LessOrEqual(t, res.DiscountAmount, full.DiscountAmount, "%s without item %d", c.Code, drop)
		}
	}
}

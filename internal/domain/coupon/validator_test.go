package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	past := testNow.Add(-24 * time.Hour)
	future := testNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		coupon     func() *Coupon
		items      []LineItem
		wantAmount int64
		wantReason Reason
	}{
		{
			name:       "valid percentage coupon",
			coupon:     func() *Coupon { c := percentCoupon("SAVE10", 10); return &c },
			items:      []LineItem{item("p1", "shirts", 1000, 2)},
			wantAmount: 200,
		},
		{
			name: "inactive",
			coupon: func() *Coupon {
				c := percentCoupon("OFF", 10)
				c.IsActive = false
				return &c
			},
			items:      []LineItem{item("p1", "shirts", 1000, 1)},
			wantReason: ReasonInactive,
		},
		{
			name: "not started",
			coupon: func() *Coupon {
				c := percentCoupon("SOON", 10)
				c.StartDate = &future
				return &c
			},
			items:      []LineItem{item("p1", "shirts", 1000, 1)},
			wantReason: ReasonNotStarted,
		},
		{
			name: "expired",
			coupon: func() *Coupon {
				c := percentCoupon("OLD", 10)
				c.ExpiryDate = past
				return &c
			},
			items:      []LineItem{item("p1", "shirts", 1000, 1)},
			wantReason: ReasonExpired,
		},
		{
			name: "usage exhausted",
			coupon: func() *Coupon {
				c := fixedCoupon("GONE", 100)
				c.MaxUsage = ptr(int64(5))
				c.UsageCount = 5
				return &c
			},
			items:      []LineItem{item("p1", "shirts", 1000, 1)},
			wantReason: ReasonUsageExhausted,
		},
		{
			name: "scope misses selection",
			coupon: func() *Coupon {
				c := scoped(fixedCoupon("BOOKS", 100), ScopeCategories, "books")
				return &c
			},
			items:      []LineItem{item("p1", "shirts", 1000, 1)},
			wantReason: ReasonNotApplicableToSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.coupon(), tt.items, testIndex(), testNow)
			assert.Equal(t, tt.wantReason, res.Rejection)
			assert.Equal(t, tt.wantAmount, res.DiscountAmount)
		})
	}
}

func TestEvaluate_LifecycleReportsApplicableSubtotal(t *testing.T) {
	c := percentCoupon("OLD", 10)
	c.ExpiryDate = testNow.Add(-time.Second)

	res := Evaluate(&c, []LineItem{item("p1", "shirts", 300, 2)}, testIndex(), testNow)
	assert.Equal(t, ReasonExpired, res.Rejection)
	assert.Equal(t, int64(600), res.ApplicableSubtotal)
	assert.Zero(t, res.DiscountAmount)
}

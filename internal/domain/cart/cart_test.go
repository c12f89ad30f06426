package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func testSnapshot(coupons ...coupon.Coupon) *Snapshot {
	idx := catalog.BuildIndex([]catalog.CategoryNode{
		{ID: "apparel"},
		{ID: "shoes", ParentID: strp("apparel")},
		{ID: "shirts", ParentID: strp("apparel")},
	})
	return NewSnapshot(idx, coupons)
}

func shoeCoupon() coupon.Coupon {
	return coupon.Coupon{
		Code:          "SHOE50K",
		DiscountType:  coupon.DiscountFixed,
		DiscountValue: decimal.NewFromInt(50_000),
		MinOrderValue: 300_000,
		ExpiryDate:    now.Add(time.Hour),
		IsActive:      true,
		Scope:         coupon.ScopeCategories,
		ApplicableIDs: coupon.NewIDSet("shoes"),
	}
}

func shoes(price int64) coupon.LineItem {
	return coupon.LineItem{ProductID: "runner", CategoryID: strp("shoes"), UnitPrice: price, Quantity: 1}
}

func shirt(price int64) coupon.LineItem {
	return coupon.LineItem{ProductID: "tee", CategoryID: strp("shirts"), UnitPrice: price, Quantity: 1}
}

func TestCart_Apply(t *testing.T) {
	snap := testSnapshot(shoeCoupon())

	t.Run("success", func(t *testing.T) {
		c := New([]coupon.LineItem{shoes(320_000), shirt(100_000)})
		next, reason := c.Apply(snap, " shoe50k ", now)

		assert.Equal(t, coupon.ReasonNone, reason)
		assert.Equal(t, Applied, next.State())
		assert.Equal(t, "SHOE50K", next.AppliedCode())
		assert.Equal(t, int64(50_000), next.Discount().DiscountAmount)
		assert.Equal(t, int64(370_000), next.Total())

		assert.Equal(t, NoneApplied, c.State(), "receiver must not change")
	})

	t.Run("unknown code", func(t *testing.T) {
		c := New([]coupon.LineItem{shoes(320_000)})
		next, reason := c.Apply(snap, "NOPE", now)

		assert.Equal(t, coupon.ReasonUnknownCode, reason)
		assert.Equal(t, NoneApplied, next.State())
	})

	t.Run("minimum not met on category subtotal", func(t *testing.T) {
		c := New([]coupon.LineItem{shoes(250_000), shirt(100_000)})
		next, reason := c.Apply(snap, "SHOE50K", now)

		assert.Equal(t, coupon.ReasonMinOrderNotMet, reason)
		assert.Equal(t, NoneApplied, next.State())
		assert.Equal(t, int64(350_000), next.Total())
	})

	t.Run("expired", func(t *testing.T) {
		c := New([]coupon.LineItem{shoes(320_000)})
		_, reason := c.Apply(snap, "SHOE50K", now.Add(2*time.Hour))
		assert.Equal(t, coupon.ReasonExpired, reason)
	})

	t.Run("failed apply keeps current coupon", func(t *testing.T) {
		c, reason := New([]coupon.LineItem{shoes(320_000)}).Apply(snap, "SHOE50K", now)
		require.Equal(t, coupon.ReasonNone, reason)

		next, reason := c.Apply(snap, "NOPE", now)
		assert.Equal(t, coupon.ReasonUnknownCode, reason)
		assert.Equal(t, "SHOE50K", next.AppliedCode())
	})
}

func TestCart_WithItemsInvalidates(t *testing.T) {
	snap := testSnapshot(shoeCoupon())
	c, reason := New([]coupon.LineItem{shoes(320_000), shirt(100_000)}).Apply(snap, "SHOE50K", now)
	require.Equal(t, coupon.ReasonNone, reason)

	still, ev := c.WithItems(snap, []coupon.LineItem{shoes(300_000)}, now)
	assert.Nil(t, ev)
	assert.Equal(t, Applied, still.State())

	dropped, ev := c.WithItems(snap, []coupon.LineItem{shoes(250_000), shirt(100_000)}, now)
	require.NotNil(t, ev)
	assert.Equal(t, Invalidated{Code: "SHOE50K", Reason: coupon.ReasonMinOrderNotMet}, *ev)
	assert.Equal(t, NoneApplied, dropped.State())
	assert.Zero(t, dropped.Discount())

	gone, ev := c.WithItems(snap, []coupon.LineItem{shirt(400_000)}, now)
	require.NotNil(t, ev)
	assert.Equal(t, coupon.ReasonNotApplicableToSelection, ev.Reason)
	assert.Equal(t, NoneApplied, gone.State())
}

func TestCart_RevalidateClockAndSnapshot(t *testing.T) {
	snap := testSnapshot(shoeCoupon())
	c, _ := New([]coupon.LineItem{shoes(320_000)}).Apply(snap, "SHOE50K", now)

	same, ev := c.Revalidate(snap, now.Add(30*time.Minute))
	assert.Nil(t, ev)
	assert.Equal(t, c, same)

	expired, ev := c.Revalidate(snap, now.Add(2*time.Hour))
	require.NotNil(t, ev)
	assert.Equal(t, coupon.ReasonExpired, ev.Reason)
	assert.Equal(t, NoneApplied, expired.State())

	deactivated := shoeCoupon()
	deactivated.IsActive = false
	_, ev = c.Revalidate(testSnapshot(deactivated), now)
	require.NotNil(t, ev)
	assert.Equal(t, coupon.ReasonInactive, ev.Reason)

	_, ev = c.Revalidate(testSnapshot(), now)
	require.NotNil(t, ev)
	assert.Equal(t, coupon.ReasonUnknownCode, ev.Reason)

	none, ev := New(nil).Revalidate(snap, now)
	assert.Nil(t, ev)
	assert.Equal(t, NoneApplied, none.State())
}

func TestCart_Remove(t *testing.T) {
	snap := testSnapshot(shoeCoupon())
	c, _ := New([]coupon.LineItem{shoes(320_000)}).Apply(snap, "SHOE50K", now)
	require.Equal(t, Applied, c.State())

	removed := c.Remove()
	assert.Equal(t, NoneApplied, removed.State())
	assert.Equal(t, "", removed.AppliedCode())
	assert.Equal(t, int64(320_000), removed.Total())
	assert.Equal(t, Applied, c.State())
}

func TestCart_ItemsAreCopied(t *testing.T) {
	items := []coupon.LineItem{shirt(100)}
	c := New(items)
	items[0].UnitPrice = 999

	got := c.Items()
	assert.Equal(t, int64(100), got[0].UnitPrice)
	got[0].UnitPrice = 1
	assert.Equal(t, int64(100), c.Subtotal())
}

func TestSnapshot_Eligible(t *testing.T) {
	snap := testSnapshot(shoeCoupon())
	assert.Empty(t, snap.Eligible([]coupon.LineItem{shoes(250_000), shirt(100_000)}, now))

	offers := snap.Eligible([]coupon.LineItem{shoes(320_000)}, now)
	require.Len(t, offers, 1)
	assert.Equal(t, int64(50_000), offers[0].Discount.DiscountAmount)
}

package coupon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/catalog"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// testIndex is apparel > shoes > sneakers, apparel > shirts, and a separate
// books root.
func testIndex() *catalog.Index {
	return catalog.BuildIndex([]catalog.CategoryNode{
		{ID: "apparel", Name: "Apparel"},
		{ID: "shoes", Name: "Shoes", ParentID: ptr("apparel")},
		{ID: "sneakers", Name: "Sneakers", ParentID: ptr("shoes")},
		{ID: "shirts", Name: "Shirts", ParentID: ptr("apparel")},
		{ID: "books", Name: "Books"},
	})
}

func item(productID, categoryID string, price, qty int64) LineItem {
	li := LineItem{ProductID: productID, UnitPrice: price, Quantity: qty}
	if categoryID != "" {
		li.CategoryID = ptr(categoryID)
	}
	return li
}

func percentCoupon(code string, value int64) Coupon {
	return Coupon{
		Code:          code,
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(value),
		ExpiryDate:    testNow.Add(30 * 24 * time.Hour),
		IsActive:      true,
		Scope:         ScopeAll,
	}
}

func fixedCoupon(code string, value int64) Coupon {
	c := percentCoupon(code, value)
	c.DiscountType = DiscountFixed
	return c
}

func scoped(c Coupon, scope Scope, ids ...string) Coupon {
	c.Scope = scope
	c.ApplicableIDs = NewIDSet(ids...)
	return c
}

package coupon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront/internal/domain/catalog"
)

func TestIsItemApplicable(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name   string
		coupon Coupon
		item   LineItem
		want   bool
	}{
		{"all scope", percentCoupon("ALL", 10), item("p1", "", 10, 1), true},
		{"product listed", scoped(percentCoupon("P", 10), ScopeProducts, "p1", "p2"), item("p2", "books", 10, 1), true},
		{"product not listed", scoped(percentCoupon("P", 10), ScopeProducts, "p1"), item("p3", "books", 10, 1), false},
		{"own category", scoped(percentCoupon("C", 10), ScopeCategories, "shoes"), item("p1", "shoes", 10, 1), true},
		{"parent category", scoped(percentCoupon("C", 10), ScopeCategories, "shoes"), item("p1", "sneakers", 10, 1), true},
		{"root category", scoped(percentCoupon("C", 10), ScopeCategories, "apparel"), item("p1", "sneakers", 10, 1), true},
		{"sibling category", scoped(percentCoupon("C", 10), ScopeCategories, "shoes"), item("p1", "shirts", 10, 1), false},
		{"child does not cover parent", scoped(percentCoupon("C", 10), ScopeCategories, "sneakers"), item("p1", "shoes", 10, 1), false},
		{"nil category", scoped(percentCoupon("C", 10), ScopeCategories, "shoes"), item("p1", "", 10, 1), false},
		{"unknown category", scoped(percentCoupon("C", 10), ScopeCategories, "shoes"), item("p1", "ghost", 10, 1), false},
		{"unknown scope", scoped(percentCoupon("X", 10), Scope("brands"), "p1"), item("p1", "shoes", 10, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsItemApplicable(tt.item, &tt.coupon, idx))
		})
	}
}

func TestIsItemApplicable_CategoryChainProperty(t *testing.T) {
	idx := testIndex()
	categories := []string{"apparel", "shoes", "sneakers", "shirts", "books"}

	for _, scopeID := range categories {
		c := scoped(percentCoupon("C", 10), ScopeCategories, scopeID)
		for _, itemCat := range categories {
			_, inChain := idx.Chain(itemCat)[scopeID]
			got := IsItemApplicable(item("p", itemCat, 1, 1), &c, idx)
			assert.Equal(t, inChain, got, "scope %s item %s", scopeID, itemCat)
		}
	}
}

func TestIsItemApplicable_CyclicCatalogTerminates(t *testing.T) {
	idx := catalog.BuildIndex([]catalog.CategoryNode{
		{ID: "a", ParentID: ptr("b")},
		{ID: "b", ParentID: ptr("a")},
	})
	c := scoped(percentCoupon("C", 10), ScopeCategories, "z")

	assert.False(t, IsItemApplicable(item("p", "a", 1, 1), &c, idx))

	c = scoped(percentCoupon("C", 10), ScopeCategories, "b")
	assert.True(t, IsItemApplicable(item("p", "a", 1, 1), &c, idx))
}

func TestSelectionHasApplicableItem(t *testing.T) {
	idx := testIndex()
	all := percentCoupon("ALL", 10)

	assert.False(t, SelectionHasApplicableItem(nil, &all, idx))
	assert.True(t, SelectionHasApplicableItem([]LineItem{item("p1", "", 0, 1)}, &all, idx))

	shoes := scoped(percentCoupon("S", 10), ScopeCategories, "shoes")
	assert.False(t, SelectionHasApplicableItem([]LineItem{item("p1", "shirts", 10, 1)}, &shoes, idx))
	assert.True(t, SelectionHasApplicableItem([]LineItem{
		item("p1", "shirts", 10, 1),
		item("p2", "sneakers", 10, 1),
	}, &shoes, idx))
}

func TestPartitionAndSubtotals(t *testing.T) {
	idx := testIndex()
	items := []LineItem{
		item("p1", "sneakers", 100, 2),
		item("p2", "shirts", 50, 1),
		item("p3", "shoes", 30, 3),
		item("p4", "", 7, 1),
	}
	c := scoped(percentCoupon("S", 10), ScopeCategories, "shoes")

	applicable, rest := Partition(items, &c, idx)
	assert.Equal(t, []LineItem{items[0], items[2]}, applicable)
	assert.Equal(t, []LineItem{items[1], items[3]}, rest)

	assert.Equal(t, int64(290), ApplicableSubtotal(items, &c, idx))
	assert.Equal(t, int64(347), Subtotal(items))
	assert.LessOrEqual(t, ApplicableSubtotal(items, &c, idx), Subtotal(items))
}

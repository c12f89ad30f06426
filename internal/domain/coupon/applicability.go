package coupon

import "github.com/xenking/storefront/internal/domain/catalog"

// IsItemApplicable reports whether a line item falls under the coupon's scope.
// Category scopes match the item's own category or any of its ancestors;
// items without a category never match a category scope.
func IsItemApplicable(item LineItem, c *Coupon, idx *catalog.Index) bool {
	switch c.Scope {
	case ScopeAll:
		return true
	case ScopeProducts:
		return c.ApplicableIDs.Has(item.ProductID)
	case ScopeCategories:
		if item.CategoryID == nil {
			return false
		}
		if c.ApplicableIDs.Has(*item.CategoryID) {
			return true
		}
		ancestors, _ := idx.Ancestors(*item.CategoryID)
		for _, id := range ancestors {
			if c.ApplicableIDs.Has(id) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SelectionHasApplicableItem reports whether any item qualifies for the coupon.
func SelectionHasApplicableItem(items []LineItem, c *Coupon, idx *catalog.Index) bool {
	for _, item := range items {
		if IsItemApplicable(item, c, idx) {
			return true
		}
	}
	return false
}

// Partition splits items into those the coupon applies to and the rest,
// preserving order.
func Partition(items []LineItem, c *Coupon, idx *catalog.Index) (applicable, rest []LineItem) {
	for _, item := range items {
		if IsItemApplicable(item, c, idx) {
			applicable = append(applicable, item)
		} else {
			rest = append(rest, item)
		}
	}
	return applicable, rest
}

// ApplicableSubtotal sums unit price times quantity over qualifying items only.
func ApplicableSubtotal(items []LineItem, c *Coupon, idx *catalog.Index) int64 {
	var sum int64
	for _, item := range items {
		if IsItemApplicable(item, c, idx) {
			sum += item.Total()
		}
	}
	return sum
}

// Subtotal sums unit price times quantity over all items.
func Subtotal(items []LineItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Total()
	}
	return sum
}

package coupon

import "time"

// CheckLifecycle reports why a coupon cannot be used at now, or ReasonNone
// when it is currently usable. Reasons are checked in a fixed order so the
// same coupon always yields the same reason.
func CheckLifecycle(c *Coupon, now time.Time) Reason {
	switch {
	case !c.IsActive:
		return ReasonInactive
	case c.StartDate != nil && now.Before(*c.StartDate):
		return ReasonNotStarted
	case now.After(c.ExpiryDate):
		return ReasonExpired
	case c.MaxUsage != nil && c.UsageCount >= *c.MaxUsage:
		return ReasonUsageExhausted
	default:
		return ReasonNone
	}
}

// IsCurrentlyValid reports whether the coupon is active, inside its
// validity window (both ends inclusive) and below its global usage cap.
func IsCurrentlyValid(c *Coupon, now time.Time) bool {
	return CheckLifecycle(c, now) == ReasonNone
}

// MeetsMinOrder reports whether the applicable subtotal reaches the
// coupon's minimum order value.
func MeetsMinOrder(applicableSubtotal int64, c *Coupon) bool {
	return applicableSubtotal >= c.MinOrderValue
}

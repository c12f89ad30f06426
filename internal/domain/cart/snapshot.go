package cart

import (
	"time"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
)

// Snapshot is an immutable view of the category forest and the coupon list,
// loaded once per session or request.
type Snapshot struct {
	Index   *catalog.Index
	Coupons []coupon.Coupon

	byCode map[string]int
}

// NewSnapshot indexes coupons by normalized code. The coupons slice is
// owned by the snapshot afterwards.
func NewSnapshot(idx *catalog.Index, coupons []coupon.Coupon) *Snapshot {
	s := &Snapshot{
		Index:   idx,
		Coupons: coupons,
		byCode:  make(map[string]int, len(coupons)),
	}
	for i := range coupons {
		s.byCode[coupon.NormalizeCode(coupons[i].Code)] = i
	}
	return s
}

// Lookup finds a coupon by code, ignoring case and surrounding space.
func (s *Snapshot) Lookup(code string) (*coupon.Coupon, bool) {
	i, ok := s.byCode[coupon.NormalizeCode(code)]
	if !ok {
		return nil, false
	}
	return &s.Coupons[i], true
}

// Eligible lists the offers for a selection.
func (s *Snapshot) Eligible(items []coupon.LineItem, now time.Time) []coupon.Offer {
	return coupon.ListEligibleWithDiscount(s.Coupons, items, s.Index, now)
}

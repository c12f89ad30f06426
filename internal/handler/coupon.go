package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// EligibleCoupons serves POST /api/cart/coupons: the coupons the shopper can
// apply to the posted items, best first, each with its discount.
func (h *Handler) EligibleCoupons(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(w, r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	offers, err := h.checkout.EligibleCoupons(r.Context(), req.Items)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var e jx.Encoder
	e.ArrStart()
	for _, o := range offers {
		encodeOffer(&e, o)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// Quote serves POST /api/cart/quote. A rejected coupon still yields 200 with
// the reason in the "coupon" object and a zero discount.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(w, r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	q, err := h.checkout.Quote(r.Context(), req.Items, req.CouponCode)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var e jx.Encoder
	encodeQuote(&e, q)
	writeJSON(w, http.StatusOK, &e)
}

// ListCoupons serves GET /api/coupons with every stored coupon, including
// inactive and expired ones.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeDomainError(w, r, errors.Wrap(err, "list coupons"))
		return
	}
	var e jx.Encoder
	e.ArrStart()
	for i := range coupons {
		encodeAdminCoupon(&e, &coupons[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/order"
)

// PlaceOrder serves POST /api/order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCartRequest(w, r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	res, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		Items:      req.Items,
		CouponCode: req.CouponCode,
		UserID:     req.UserID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var e jx.Encoder
	h.encodeOrder(&e, res)
	writeJSON(w, http.StatusOK, &e)
}

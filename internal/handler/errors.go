package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// writeDomainError maps domain errors to API responses. Anything
// unrecognized is logged and reported as a 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		qtyErr *checkout.InvalidQuantityError
		pnfErr *checkout.ProductNotFoundError
		rejErr *coupon.RejectionError
	)
	switch {
	case errors.Is(err, checkout.ErrEmptySelection):
		writeError(w, http.StatusBadRequest, err.Error(), coupon.ReasonNone)
	case errors.Is(err, checkout.ErrTotalOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), coupon.ReasonNone)
	case errors.As(err, &qtyErr):
		writeError(w, http.StatusUnprocessableEntity, qtyErr.Error(), coupon.ReasonNone)
	case errors.As(err, &pnfErr):
		writeError(w, http.StatusUnprocessableEntity, pnfErr.Error(), coupon.ReasonNone)
	case errors.As(err, &rejErr):
		writeError(w, http.StatusUnprocessableEntity, rejErr.Reason.Message(), rejErr.Reason)
	case errors.Is(err, order.ErrUserRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), coupon.ReasonNone)
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found", coupon.ReasonNone)
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", coupon.ReasonNone)
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), coupon.ReasonNone)
}

// Package handler serves the storefront REST API on net/http with jx
// encoding.
package handler

import (
	"net/http"
	"strings"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	ImageBaseURL string
}

// Handler serves the storefront API.
type Handler struct {
	categories   catalog.Repository
	products     product.Repository
	coupons      coupon.Repository
	checkout     *checkout.Service
	orders       *order.Service
	security     *SecurityHandler
	imageBaseURL string
}

// New constructs a Handler.
func New(
	cfg Config,
	categories catalog.Repository,
	products product.Repository,
	coupons coupon.Repository,
	checkoutSvc *checkout.Service,
	orderSvc *order.Service,
	security *SecurityHandler,
) *Handler {
	return &Handler{
		categories:   categories,
		products:     products,
		coupons:      coupons,
		checkout:     checkoutSvc,
		orders:       orderSvc,
		security:     security,
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/product", h.ListProducts)
	mux.HandleFunc("GET /api/product/{productId}", h.GetProduct)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/cart/coupons", h.EligibleCoupons)
	mux.HandleFunc("POST /api/cart/quote", h.Quote)
	mux.Handle("GET /api/coupons", h.security.Require(auth.ScopeCouponsRead, http.HandlerFunc(h.ListCoupons)))
	mux.Handle("POST /api/order", h.security.Require(auth.ScopeOrdersWrite, http.HandlerFunc(h.PlaceOrder)))
}

// Routes returns a mux with the API routes mounted.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

// imageURL prefixes relative paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" || strings.Contains(path, "://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimPrefix(path, "/")
}

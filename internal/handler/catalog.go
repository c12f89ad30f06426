package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ListProducts serves GET /api/product.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, errors.Wrap(err, "list products"))
		return
	}
	var e jx.Encoder
	e.ArrStart()
	for _, p := range products {
		h.encodeProduct(&e, p)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct serves GET /api/product/{productId}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("productId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var e jx.Encoder
	h.encodeProduct(&e, *p)
	writeJSON(w, http.StatusOK, &e)
}

// ListCategories serves GET /api/categories as stored, including malformed
// entries.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.categories.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, errors.Wrap(err, "list categories"))
		return
	}
	var e jx.Encoder
	e.ArrStart()
	for _, n := range nodes {
		encodeCategory(&e, n)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

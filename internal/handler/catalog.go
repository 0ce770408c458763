package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/model"
)

// handleListProducts proxies the public catalog listing. Pagination,
// filter, and sort parameters pass through untouched.
// GET /api/products
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	env, err := h.upstream.ListProducts(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleGetProduct proxies a single product lookup.
// GET /api/products/{id}
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	if productID == "" {
		h.writeError(w, model.NewValidationError("id", "required"))
		return
	}

	env, err := h.upstream.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleListCategories proxies the category listing.
// GET /api/categories
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	env, err := h.upstream.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleListSubcategories proxies a category's subcategory listing.
// GET /api/categories/{id}/subcategories
func (h *Handler) handleListSubcategories(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if categoryID == "" {
		h.writeError(w, model.NewValidationError("id", "required"))
		return
	}

	env, err := h.upstream.ListSubcategories(r.Context(), categoryID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

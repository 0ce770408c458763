package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/model"
)

// handleGetWishlist returns the user's wishlist.
// GET /api/wishlist
func (h *Handler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.GetWishlist(r.Context(), sess.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleAddWishlist adds a product to the wishlist.
// POST /api/wishlist
func (h *Handler) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.ProductID == "" {
		h.writeError(w, model.NewValidationError("productId", "required"))
		return
	}

	env, err := h.upstream.AddToWishlist(r.Context(), sess.Token, req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleRemoveWishlist removes a product from the wishlist.
// DELETE /api/wishlist/{productId}
func (h *Handler) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		h.writeError(w, model.NewValidationError("productId", "required"))
		return
	}

	env, err := h.upstream.RemoveFromWishlist(r.Context(), sess.Token, productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

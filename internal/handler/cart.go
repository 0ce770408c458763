package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/model"
)

// handleGetCart returns the user's cart.
// GET /api/cart
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.GetCart(r.Context(), sess.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleAddCartItem adds one unit of the product to the cart.
// POST /api/cart-item/{productId}
func (h *Handler) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
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

	env, err := h.upstream.AddToCart(r.Context(), sess.Token, productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleUpdateCart sets the quantity of a cart line. A count of zero is a
// removal; negative counts are rejected before upstream sees them.
// PUT /api/cart/update
func (h *Handler) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
		Count     int    `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	switch {
	case req.ProductID == "":
		h.writeError(w, model.NewValidationError("productId", "required"))
		return
	case req.Count < 0:
		h.writeError(w, model.NewValidationError("count", "must not be negative"))
		return
	}

	var env *model.Envelope
	if req.Count == 0 {
		env, err = h.upstream.RemoveCartItem(r.Context(), sess.Token, req.ProductID)
	} else {
		env, err = h.upstream.UpdateCartItem(r.Context(), sess.Token, req.ProductID, req.Count)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleRemoveCartItem deletes a cart line.
// DELETE /api/cart-item/{productId}
func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
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

	env, err := h.upstream.RemoveCartItem(r.Context(), sess.Token, productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleEmptyCart clears the cart entirely.
// DELETE /api/cart/empty
func (h *Handler) handleEmptyCart(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.ClearCart(r.Context(), sess.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

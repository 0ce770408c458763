package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/model"
	"storefront-gateway/internal/session"
)

// handleListOrders returns the user's order history. The user id is read
// from the upstream bearer token because the orders endpoint keys on it.
// GET /api/orders
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	userID, err := session.UserIDFromToken(sess.Token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.ListOrders(r.Context(), sess.Token, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleCreateCashOrder turns the cart into a pay-on-delivery order.
// POST /api/orders
func (h *Handler) handleCreateCashOrder(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		CartID          string                `json:"cartId"`
		ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.CartID == "" {
		h.writeError(w, model.NewValidationError("cartId", "required"))
		return
	}
	if err := checkout.ValidateShippingAddress(req.ShippingAddress); err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.CreateCashOrder(r.Context(), sess.Token, req.CartID, req.ShippingAddress)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleCheckoutSession asks upstream for a hosted payment session and
// returns its redirect URL. A success without a URL is treated as a
// failure so the client never redirects nowhere.
// POST /api/checkout-session
func (h *Handler) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		CartID          string                `json:"cartId"`
		ReturnURL       string                `json:"url"`
		ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.CartID == "" {
		h.writeError(w, model.NewValidationError("cartId", "required"))
		return
	}
	if err := checkout.ValidateShippingAddress(req.ShippingAddress); err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.CreateCheckoutSession(r.Context(), sess.Token, req.CartID, req.ReturnURL, req.ShippingAddress)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var payload struct {
		Session struct {
			URL string `json:"url"`
		} `json:"session"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			h.writeError(w, model.NewInternalError(err))
			return
		}
	}
	if payload.Session.URL == "" {
		h.writeError(w, model.NewUpstreamError(fmt.Errorf("checkout session response missing redirect URL")))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": model.StatusSuccess,
		"data":   map[string]string{"url": payload.Session.URL},
	})
}

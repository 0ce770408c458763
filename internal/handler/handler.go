// Package handler provides the HTTP handlers of the storefront gateway.
// Each handler resolves the session, validates fail-fast, forwards to the
// commerce API with the bearer token attached, and returns the normalized
// envelope. The layer holds no state of its own.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/model"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	upstream *upstream.Client
	sessions *session.Manager
	logger   *slog.Logger
}

// New creates a Handler with the given upstream client, session manager,
// and logger.
func New(up *upstream.Client, sessions *session.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		upstream: up,
		sessions: sessions,
		logger:   logger,
	}
}

// Routes registers all gateway routes on the given chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/signin", h.handleSignIn)
		r.Post("/auth/signout", h.handleSignOut)
		r.Post("/auth/forgot-password", h.handleForgotPassword)
		r.Post("/auth/verify-code", h.handleVerifyCode)
		r.Post("/auth/reset-password", h.handleResetPassword)

		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)
		r.Get("/categories", h.handleListCategories)
		r.Get("/categories/{id}/subcategories", h.handleListSubcategories)

		// Session-gated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.sessions))

			r.Put("/auth/change-password", h.handleChangePassword)
			r.Put("/auth/profile", h.handleUpdateProfile)

			r.Get("/cart", h.handleGetCart)
			r.Post("/cart-item/{productId}", h.handleAddCartItem)
			r.Put("/cart/update", h.handleUpdateCart)
			r.Delete("/cart-item/{productId}", h.handleRemoveCartItem)
			r.Delete("/cart/empty", h.handleEmptyCart)

			r.Get("/wishlist", h.handleGetWishlist)
			r.Post("/wishlist", h.handleAddWishlist)
			r.Delete("/wishlist/{productId}", h.handleRemoveWishlist)

			r.Get("/addresses", h.handleListAddresses)
			r.Post("/addresses/add", h.handleAddAddress)
			r.Delete("/addresses/{id}", h.handleRemoveAddress)

			r.Get("/orders", h.handleListOrders)
			r.Post("/orders", h.handleCreateCashOrder)
			r.Post("/checkout-session", h.handleCheckoutSession)

			r.Post("/products/{id}/reviews", h.handleCreateReview)
			r.Put("/reviews/{id}", h.handleUpdateReview)
			r.Delete("/reviews/{id}", h.handleDeleteReview)
		})
	})
}

// === Response helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeEnvelope sends a normalized success envelope.
func (h *Handler) writeEnvelope(w http.ResponseWriter, env *model.Envelope) {
	h.writeJSON(w, http.StatusOK, env)
}

// writeError sends a uniform {"error": message} body, extracting the status
// from APIError if present. Raw upstream errors never reach the client.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = model.NewInternalError(err)
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20

// decodeJSON reads JSON from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose decoder internals to the client.
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}

// sessionFrom returns the session resolved by the auth middleware.
func sessionFrom(r *http.Request) (*model.Session, error) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		return nil, model.NewUnauthorizedError("not authenticated")
	}
	return sess, nil
}

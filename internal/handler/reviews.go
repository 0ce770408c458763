package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-gateway/internal/model"
)

// reviewRequest carries the review body. Rating comes in as float64 so a
// fractional value can be rejected instead of silently truncated.
type reviewRequest struct {
	Review string  `json:"review"`
	Rating float64 `json:"rating"`
}

func (req reviewRequest) validate() (int, error) {
	if req.Review == "" {
		return 0, model.NewValidationError("review", "required")
	}
	rating := int(req.Rating)
	if float64(rating) != req.Rating || rating < 1 || rating > 5 {
		return 0, model.NewValidationError("rating", "must be a whole number between 1 and 5")
	}
	return rating, nil
}

// handleCreateReview posts a review on a product.
// POST /api/products/{id}/reviews
func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	productID := chi.URLParam(r, "id")
	if productID == "" {
		h.writeError(w, model.NewValidationError("id", "required"))
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	rating, err := req.validate()
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.CreateReview(r.Context(), sess.Token, productID, req.Review, rating)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleUpdateReview edits the user's own review.
// PUT /api/reviews/{id}
func (h *Handler) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reviewID := chi.URLParam(r, "id")
	if reviewID == "" {
		h.writeError(w, model.NewValidationError("id", "required"))
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	rating, err := req.validate()
	if err != nil {
		h.writeError(w, err)
		return
	}

	env, err := h.upstream.UpdateReview(r.Context(), sess.Token, reviewID, req.Review, rating)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleDeleteReview removes the user's own review.
// DELETE /api/reviews/{id}
func (h *Handler) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reviewID := chi.URLParam(r, "id")
	if reviewID == "" {
		h.writeError(w, model.NewValidationError("id", "required"))
		return
	}

	env, err := h.upstream.DeleteReview(r.Context(), sess.Token, reviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

package handler

import (
	"log/slog"
	"net/http"

	"storefront-gateway/internal/model"
)

// minPasswordLength is enforced before any upstream call.
const minPasswordLength = 6

// handleSignIn exchanges credentials for a session cookie.
// POST /api/auth/signin
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, model.NewValidationError("credentials", "email and password are required"))
		return
	}

	sess, err := h.upstream.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, *sess); err != nil {
		h.writeError(w, model.NewInternalError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "user signed in", slog.String("user_id", sess.User.ID))

	// The token stays inside the signed cookie; only the profile goes to
	// the browser.
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": model.StatusSuccess,
		"data":   sess.User,
	})
}

// handleSignOut destroys the session cookie.
// POST /api/auth/signout
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  model.StatusSuccess,
		"message": "signed out",
	})
}

// handleChangePassword rotates the password after local validation.
// PUT /api/auth/change-password
func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		Password        string `json:"password"`
		RePassword      string `json:"rePassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	// Fail fast: none of these reach upstream.
	switch {
	case req.CurrentPassword == "" || req.Password == "" || req.RePassword == "":
		h.writeError(w, model.NewValidationError("password", "currentPassword, password and rePassword are required"))
		return
	case req.Password != req.RePassword:
		h.writeError(w, model.NewValidationError("rePassword", "passwords do not match"))
		return
	case len(req.Password) < minPasswordLength:
		h.writeError(w, model.NewValidationError("password", "must be at least 6 characters"))
		return
	}

	newToken, err := h.upstream.ChangePassword(r.Context(), sess.Token, req.CurrentPassword, req.Password, req.RePassword)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Upstream rotates the bearer token with the password; refresh the
	// cookie so the session stays valid.
	if newToken != "" {
		if err := h.sessions.Issue(w, model.Session{User: sess.User, Token: newToken}); err != nil {
			h.writeError(w, model.NewInternalError(err))
			return
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  model.StatusSuccess,
		"message": "password changed",
	})
}

// handleUpdateProfile edits name/email/phone and refreshes the session
// cookie so its claims match the new profile.
// PUT /api/auth/profile
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Name == "" && req.Email == "" && req.Phone == "" {
		h.writeError(w, model.NewValidationError("profile", "nothing to update"))
		return
	}

	update := map[string]string{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}

	user, err := h.upstream.UpdateProfile(r.Context(), sess.Token, update)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.sessions.Issue(w, model.Session{User: *user, Token: sess.Token}); err != nil {
		h.writeError(w, model.NewInternalError(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": model.StatusSuccess,
		"data":   user,
	})
}

// handleForgotPassword starts the three-step reset flow.
// POST /api/auth/forgot-password
func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Email == "" {
		h.writeError(w, model.NewValidationError("email", "required"))
		return
	}

	env, err := h.upstream.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEnvelope(w, env)
}

// handleVerifyCode confirms the emailed reset code and gates the final
// step behind short-lived signed cookies.
// POST /api/auth/verify-code
func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		ResetCode string `json:"resetCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Email == "" || req.ResetCode == "" {
		h.writeError(w, model.NewValidationError("body", "email and resetCode are required"))
		return
	}

	env, err := h.upstream.VerifyResetCode(r.Context(), req.ResetCode)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.sessions.IssueResetCookies(w, req.Email); err != nil {
		h.writeError(w, model.NewInternalError(err))
		return
	}
	h.writeEnvelope(w, env)
}

// handleResetPassword is the gated final step: without the verification
// cookie from verify-code it is rejected with 403 and upstream is never
// called.
// POST /api/auth/reset-password
func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	email, err := h.sessions.VerifiedResetEmail(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		h.writeError(w, model.NewValidationError("newPassword", "must be at least 6 characters"))
		return
	}

	if _, err := h.upstream.ResetPassword(r.Context(), email, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}

	h.sessions.ClearResetCookies(w)
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  model.StatusSuccess,
		"message": "password reset, please sign in again",
	})
}

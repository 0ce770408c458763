package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"

	"storefront-gateway/internal/model"
)

// Password-reset cookie pair. The verify-code step issues both; the
// reset-password step refuses to run without a valid, unexpired pair.
const (
	resetVerifiedCookie = "reset_verified"
	resetEmailCookie    = "reset_email"
)

// ResetTTL bounds the window between code verification and the actual
// password reset.
const ResetTTL = 10 * time.Minute

type resetClaims struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.StandardClaims
}

// IssueResetCookies marks the reset flow as verified for the given email.
// Called after a successful verify-code upstream call.
func (m *Manager) IssueResetCookies(w http.ResponseWriter, email string) error {
	now := time.Now()
	claims := &resetClaims{
		Email:    email,
		Verified: true,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ResetTTL).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("signing reset cookie: %w", err)
	}

	maxAge := int(ResetTTL.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     resetVerifiedCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	// Email travels in its own cookie so the reset form can be prefilled
	// without decoding the signed one. Authorization only ever trusts the
	// signed cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     resetEmailCookie,
		Value:    email,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// VerifiedResetEmail returns the email a verified reset flow was started
// for. A missing, expired, or unverified cookie is a 403: the caller jumped
// to the reset step without passing code verification.
func (m *Manager) VerifiedResetEmail(r *http.Request) (string, error) {
	cookie, err := r.Cookie(resetVerifiedCookie)
	if err != nil {
		return "", model.NewForbiddenError("code verification required before resetting password")
	}

	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, m.keyFunc)
	if err != nil || !token.Valid || !claims.Verified {
		return "", model.NewForbiddenError("code verification required before resetting password")
	}

	return claims.Email, nil
}

// ClearResetCookies removes the reset pair once the password was changed.
func (m *Manager) ClearResetCookies(w http.ResponseWriter) {
	for _, name := range []string{resetVerifiedCookie, resetEmailCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Package session wraps the upstream bearer token and user profile in a
// signed, httpOnly cookie. The token is opaque and must never be exposed to
// browser-readable storage; the signed cookie is its only carrier.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"

	"storefront-gateway/internal/model"
)

// CookieName is the session cookie set on signin.
const CookieName = "storefront_session"

// TTL is the session cookie lifetime. The cookie is re-issued with a fresh
// expiry whenever the profile is updated.
const TTL = 30 * 24 * time.Hour

// Claims is the JWT payload of the session cookie.
type Claims struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
	jwt.StandardClaims
}

// Manager signs and verifies session cookies.
type Manager struct {
	secret []byte
	secure bool // Secure cookie flag, false for local development
}

// NewManager creates a session manager with the given signing secret.
func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

// Issue signs a session and sets it as an httpOnly cookie on the response.
// Called on signin and re-called on profile updates to refresh the claims.
func (m *Manager) Issue(w http.ResponseWriter, sess model.Session) error {
	now := time.Now()
	claims := &Claims{
		User:  sess.User,
		Token: sess.Token,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TTL).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("signing session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read extracts and verifies the session from the request cookie.
// Any failure (missing cookie, bad signature, expiry) is a 401.
func (m *Manager) Read(r *http.Request) (*model.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, model.NewUnauthorizedError("not authenticated")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, m.keyFunc)
	if err != nil || !token.Valid {
		return nil, model.NewUnauthorizedError("invalid or expired session")
	}

	return &model.Session{User: claims.User, Token: claims.Token}, nil
}

// Clear expires the session cookie. Used on sign-out.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// keyFunc rejects any algorithm other than the one we sign with.
func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}

// UserIDFromToken extracts the user id claim from the upstream bearer token
// without verifying it; the upstream API holds the signing key, the gateway
// only needs the id to scope order queries. A token that does not parse or
// carries no id claim is an authentication failure, not a server error.
func UserIDFromToken(bearer string) (string, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(bearer, claims); err != nil {
		return "", model.NewUnauthorizedError("invalid bearer token")
	}

	for _, key := range []string{"userId", "id", "_id"} {
		if id, ok := claims[key].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", model.NewUnauthorizedError("bearer token has no user id claim")
}

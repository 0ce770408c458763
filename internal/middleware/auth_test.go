package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/model"
	"storefront-gateway/internal/session"
)

func TestAuth_NoSession(t *testing.T) {
	sessions := session.NewManager("secret", false)

	nextCalled := false
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, nextCalled, "handler must not run without a session")
	assert.JSONEq(t, `{"error":"not authenticated"}`, rec.Body.String())
}

func TestAuth_ValidSession(t *testing.T) {
	sessions := session.NewManager("secret", false)

	issueRec := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(issueRec, model.Session{
		User:  model.User{ID: "u1", Email: "sara@example.com"},
		Token: "upstream-token",
	}))

	var got *model.Session
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, c := range issueRec.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "upstream-token", got.Token)
}

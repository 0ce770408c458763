package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/model"
)

const testSecret = "test-secret-for-session-signing"

func testSession() model.Session {
	return model.Session{
		User: model.User{
			ID:    "u1",
			Name:  "Sara",
			Email: "sara@example.com",
			Role:  "user",
		},
		Token: "opaque-upstream-token",
	}
}

// requestWithCookies copies the cookies a handler set onto a new request,
// simulating the browser sending them back.
func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestIssueAndRead(t *testing.T) {
	m := NewManager(testSecret, false)
	rec := httptest.NewRecorder()

	require.NoError(t, m.Issue(rec, testSession()))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly, "session cookie must be httpOnly")
	assert.Equal(t, int(TTL.Seconds()), cookies[0].MaxAge)

	got, err := m.Read(requestWithCookies(t, rec))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.User.ID)
	assert.Equal(t, "opaque-upstream-token", got.Token)
}

func TestRead_NoCookie(t *testing.T) {
	m := NewManager(testSecret, false)

	_, err := m.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestRead_TamperedCookie(t *testing.T) {
	m := NewManager(testSecret, false)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Issue(rec, testSession()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie := rec.Result().Cookies()[0]
	cookie.Value += "tampered"
	req.AddCookie(cookie)

	_, err := m.Read(req)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestRead_WrongSecret(t *testing.T) {
	issuer := NewManager(testSecret, false)
	reader := NewManager("a-different-secret", false)

	rec := httptest.NewRecorder()
	require.NoError(t, issuer.Issue(rec, testSession()))

	_, err := reader.Read(requestWithCookies(t, rec))
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestRead_Expired(t *testing.T) {
	m := NewManager(testSecret, false)

	claims := &Claims{
		User:  testSession().User,
		Token: "tok",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})

	_, err = m.Read(req)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestClear(t *testing.T) {
	m := NewManager(testSecret, false)
	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestResetCookies_Roundtrip(t *testing.T) {
	m := NewManager(testSecret, false)
	rec := httptest.NewRecorder()
	require.NoError(t, m.IssueResetCookies(rec, "sara@example.com"))

	email, err := m.VerifiedResetEmail(requestWithCookies(t, rec))
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", email)
}

func TestVerifiedResetEmail_MissingCookie(t *testing.T) {
	m := NewManager(testSecret, false)

	_, err := m.VerifiedResetEmail(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, errors.Is(err, model.ErrForbidden), "skipping verify-code must be a 403")
}

func TestVerifiedResetEmail_ForgedCookie(t *testing.T) {
	m := NewManager(testSecret, false)

	// Cookie signed with an attacker-chosen secret must be rejected.
	claims := &resetClaims{
		Email:    "victim@example.com",
		Verified: true,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ResetTTL).Unix(),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: resetVerifiedCookie, Value: forged})

	_, err = m.VerifiedResetEmail(req)
	assert.True(t, errors.Is(err, model.ErrForbidden))
}

func TestUserIDFromToken(t *testing.T) {
	// The upstream token is signed with a key the gateway does not know;
	// only the id claim is read.
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u42",
		"iat":    time.Now().Unix(),
	}).SignedString([]byte("upstream-only-secret"))
	require.NoError(t, err)

	id, err := UserIDFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u42", id)
}

func TestUserIDFromToken_Garbage(t *testing.T) {
	_, err := UserIDFromToken("not-a-jwt")
	assert.True(t, errors.Is(err, model.ErrUnauthorized), "decode failure is a 401, not a 500")
}

func TestUserIDFromToken_NoIDClaim(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "sara@example.com",
	}).SignedString([]byte("upstream-only-secret"))
	require.NoError(t, err)

	_, err = UserIDFromToken(tok)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

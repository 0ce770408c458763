package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-gateway/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"status":"success","data":{"_id":"c1"}}`))
	})

	_, err := client.GetCart(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, userAgent, gotUA)
}

func TestDo_PublicEndpointHasNoAuthHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.ListProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestRemoveAddress_EmptyBodySuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/addresses/a1", r.URL.Path)
		w.WriteHeader(http.StatusOK) // deliberately no body
	})

	env, err := client.RemoveAddress(context.Background(), "tok", "a1")
	require.NoError(t, err, "empty 200 body must normalize to success")
	assert.Equal(t, model.StatusSuccess, env.Status)
	assert.NotEmpty(t, env.Message)
}

func TestDo_UpstreamErrorMessagePropagated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"this product is out of stock"}`))
	})

	_, err := client.AddToCart(context.Background(), "tok", "p1")
	require.Error(t, err)

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "this product is out of stock", apiErr.Message)
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // refuse all connections

	client, err := New(Config{BaseURL: url, HTTPClient: &http.Client{}})
	require.NoError(t, err)

	_, err = client.GetCart(context.Background(), "tok")
	assert.True(t, errors.Is(err, model.ErrUpstreamError))
}

func TestSignIn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signin", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sara@example.com", body["email"])

		w.Write([]byte(`{"data":{"id":"u1","name":"Sara","email":"sara@example.com","role":"user"},"token":"jwt-token"}`))
	})

	sess, err := client.SignIn(context.Background(), "sara@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, "jwt-token", sess.Token)
}

func TestSignIn_MissingToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"id":"u1"}}`))
	})

	_, err := client.SignIn(context.Background(), "sara@example.com", "password123")
	assert.True(t, errors.Is(err, model.ErrUpstreamError))
}

func TestUpdateCartItem_SendsCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cart/p9", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1, body["count"])

		w.Write([]byte(`{"status":"success","data":{"_id":"c1","products":[],"totalCartPrice":0}}`))
	})

	env, err := client.UpdateCartItem(context.Background(), "tok", "p9", 1)
	require.NoError(t, err)

	var cart model.Cart
	require.NoError(t, env.DecodeData(&cart))
	assert.Equal(t, "c1", cart.ID)
}

func TestCreateCheckoutSession_ReturnURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/checkout-session/cart1", r.URL.Path)
		assert.Equal(t, "https://shop.test/orders", r.URL.Query().Get("url"))
		w.Write([]byte(`{"status":"success","session":{"url":"https://pay.test/s/abc"}}`))
	})

	env, err := client.CreateCheckoutSession(context.Background(), "tok", "cart1",
		"https://shop.test/orders", model.ShippingAddress{City: "Cairo", Details: "1 Nile St", Phone: "01234567890"})
	require.NoError(t, err)

	var payload struct {
		Session struct {
			URL string `json:"url"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "https://pay.test/s/abc", payload.Session.URL)
}

func TestListOrders_PathScopedByUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/user/u42", r.URL.Path)
		w.Write([]byte(`[]`))
	})

	env, err := client.ListOrders(context.Background(), "tok", "u42")
	require.NoError(t, err)

	var orders []model.Order
	require.NoError(t, env.DecodeData(&orders))
	assert.Empty(t, orders)
}

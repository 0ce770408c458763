// Package upstream implements the typed client for the external commerce
// REST API. It is the only writer to upstream resources: every gateway
// handler and the storefront SDK go through it.
//
// The bearer token is a per-call argument rather than client state, keeping
// the client shareable across requests and the session explicit. Every
// response funnels through model.Normalize so upstream's inconsistent
// envelopes (empty delete bodies, message vs errors.message) are handled in
// exactly one place.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront-gateway/internal/model"
	"storefront-gateway/internal/observability"
	"storefront-gateway/internal/transport"
)

// userAgent identifies the gateway to upstream servers.
// Required: the commerce CDN rate-limits requests without a User-Agent.
const userAgent = "StorefrontGateway/1.0"

// Config holds upstream client configuration.
type Config struct {
	BaseURL string
	APIKey  string // optional vendor key, sent as X-API-Key when set

	// HTTPClient overrides the default client. Used by tests; production
	// uses the browser-fingerprint transport.
	HTTPClient *http.Client
}

// Client talks to the commerce API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates an upstream client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Browser TLS fingerprint avoids JA3-based rate limiting.
		// See internal/transport for rationale.
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport.NewBrowserTransport(30 * time.Second),
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// do executes a request against the commerce API and normalizes the result.
// token may be empty for public endpoints.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*model.Envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewUpstreamError(fmt.Errorf("reading response: %w", err))
	}

	env, err := model.Normalize(resp.StatusCode, respBody)
	if err != nil {
		observability.UpstreamRejections.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	}
	return env, err
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

// === Auth ===

// SignIn exchanges credentials for a user profile and bearer token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/signin", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data  model.User `json:"data"`
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, model.NewInternalError(err)
	}

	user := payload.Data
	if user.ID == "" {
		user = payload.User
	}
	if payload.Token == "" {
		return nil, model.NewUpstreamError(fmt.Errorf("signin response missing token"))
	}

	return &model.Session{User: user, Token: payload.Token}, nil
}

// UpdateProfile updates name/email/phone and returns the fresh profile so
// the session cookie can be re-issued with current claims.
func (c *Client) UpdateProfile(ctx context.Context, token string, update map[string]string) (*model.User, error) {
	env, err := c.do(ctx, http.MethodPut, "/users/updateMe", token, update)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := env.DecodeData(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the password and returns the replacement bearer
// token upstream issues alongside it.
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, password, rePassword string) (string, error) {
	env, err := c.do(ctx, http.MethodPut, "/users/changeMyPassword", token, map[string]string{
		"currentPassword": currentPassword,
		"password":        password,
		"rePassword":      rePassword,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return "", model.NewInternalError(err)
		}
	}
	return payload.Token, nil
}

// ForgotPassword starts the reset flow; upstream emails a verification code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/auth/forgotPasswords", "", map[string]string{"email": email})
}

// VerifyResetCode confirms the emailed code.
func (c *Client) VerifyResetCode(ctx context.Context, code string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/auth/verifyResetCode", "", map[string]string{"resetCode": code})
}

// ResetPassword sets a new password for a verified email and returns the
// fresh bearer token when upstream provides one.
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	env, err := c.do(ctx, http.MethodPut, "/auth/resetPassword", "", map[string]string{
		"email":       email,
		"newPassword": newPassword,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return "", model.NewInternalError(err)
		}
	}
	return payload.Token, nil
}

// === Cart ===

// GetCart fetches the authenticated user's cart.
func (c *Client) GetCart(ctx context.Context, token string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/cart", token, nil)
}

// AddToCart adds one unit of the product to the cart.
func (c *Client) AddToCart(ctx context.Context, token, productID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/cart", token, map[string]string{"productId": productID})
}

// UpdateCartItem sets the quantity of the line holding productID.
func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, count int) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), token, map[string]int{"count": count})
}

// RemoveCartItem deletes the line holding productID.
func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), token, nil)
}

// ClearCart empties the cart entirely.
func (c *Client) ClearCart(ctx context.Context, token string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodDelete, "/cart", token, nil)
}

// === Wishlist ===

// GetWishlist fetches the user's wishlist.
func (c *Client) GetWishlist(ctx context.Context, token string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/wishlist", token, nil)
}

// AddToWishlist adds the product to the wishlist. Idempotent upstream.
func (c *Client) AddToWishlist(ctx context.Context, token, productID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/wishlist", token, map[string]string{"productId": productID})
}

// RemoveFromWishlist removes the product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), token, nil)
}

// === Addresses ===

// ListAddresses fetches the user's saved addresses.
func (c *Client) ListAddresses(ctx context.Context, token string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/addresses", token, nil)
}

// AddAddress saves a new address.
func (c *Client) AddAddress(ctx context.Context, token string, addr model.Address) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/addresses", token, addr)
}

// RemoveAddress deletes an address. Upstream routinely answers this with an
// empty 200 body; Normalize synthesizes the success envelope.
func (c *Client) RemoveAddress(ctx context.Context, token, addressID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodDelete, "/addresses/"+url.PathEscape(addressID), token, nil)
}

// === Orders / checkout ===

// ListOrders fetches the orders belonging to userID.
func (c *Client) ListOrders(ctx context.Context, token, userID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), token, nil)
}

// CreateCashOrder creates an order from the cart snapshot, paid on
// delivery. Upstream clears the cart afterwards.
func (c *Client) CreateCashOrder(ctx context.Context, token, cartID string, addr model.ShippingAddress) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(cartID), token, map[string]any{
		"shippingAddress": addr,
	})
}

// CreateCheckoutSession asks upstream for a hosted payment session. The
// returned envelope carries the gateway URL the buyer must be redirected to.
func (c *Client) CreateCheckoutSession(ctx context.Context, token, cartID, returnURL string, addr model.ShippingAddress) (*model.Envelope, error) {
	path := "/orders/checkout-session/" + url.PathEscape(cartID)
	if returnURL != "" {
		path += "?url=" + url.QueryEscape(returnURL)
	}
	return c.do(ctx, http.MethodPost, path, token, map[string]any{
		"shippingAddress": addr,
	})
}

// === Catalog (public, read-only) ===

// ListProducts fetches the product catalog. query passes through upstream
// pagination/filter/sort parameters untouched.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (*model.Envelope, error) {
	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, "", nil)
}

// GetProduct fetches a single product with its populated reviews.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), "", nil)
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/categories", "", nil)
}

// ListSubcategories fetches the subcategories of a category.
func (c *Client) ListSubcategories(ctx context.Context, categoryID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodGet, "/categories/"+url.PathEscape(categoryID)+"/subcategories", "", nil)
}

// === Reviews ===

// CreateReview posts a review on a product.
func (c *Client) CreateReview(ctx context.Context, token, productID, text string, rating int) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(productID)+"/reviews", token, map[string]any{
		"review": text,
		"rating": rating,
	})
}

// UpdateReview edits the user's own review.
func (c *Client) UpdateReview(ctx context.Context, token, reviewID, text string, rating int) (*model.Envelope, error) {
	return c.do(ctx, http.MethodPut, "/reviews/"+url.PathEscape(reviewID), token, map[string]any{
		"review": text,
		"rating": rating,
	})
}

// DeleteReview removes the user's own review.
func (c *Client) DeleteReview(ctx context.Context, token, reviewID string) (*model.Envelope, error) {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(reviewID), token, nil)
}

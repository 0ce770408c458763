// Package storefront is the typed client for the gateway API. It owns the
// session cookie via an http cookie jar, serves reads through the resource
// cache, and guards mutations with the pending trackers so overlapping
// requests on the same resource are refused rather than raced.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"storefront-gateway/internal/cache"
	"storefront-gateway/internal/checkout"
	"storefront-gateway/internal/model"
	"storefront-gateway/internal/wishlist"
)

// Client talks to the storefront gateway on behalf of one buyer session.
// Not safe to share between users; each session gets its own jar.
type Client struct {
	httpClient *http.Client
	baseURL    string

	store   *cache.Store
	pending *checkout.PendingLines

	// Wishlist is the optimistic toggle controller bound to this client.
	Wishlist *wishlist.Controller
}

// Config holds client configuration.
type Config struct {
	BaseURL string

	// HTTPClient overrides the default client; a cookie jar is attached
	// if it has none.
	HTTPClient *http.Client

	// Notify receives wishlist revert notifications. May be nil.
	Notify wishlist.Notifier
}

// New creates a storefront client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		store:      cache.New(),
		pending:    checkout.NewPendingLines(),
	}
	c.Wishlist = wishlist.NewController(wishlistAdapter{c}, c.store, cfg.Notify)
	return c, nil
}

// PendingLines exposes the per-line tracker so a UI can disable controls.
func (c *Client) PendingLines() *checkout.PendingLines {
	return c.pending
}

// do sends a request and decodes the uniform gateway responses: errors
// arrive as {"error": message} with a matching status code, successes as
// the normalized envelope.
func (c *Client) do(ctx context.Context, method, path string, body any) (*model.Envelope, error) {
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
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewUpstreamError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewUpstreamError(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		message := "request failed, please try again"
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			message = errBody.Error
		}
		return nil, &model.APIError{
			Code:       "GATEWAY_ERROR",
			Message:    message,
			StatusCode: resp.StatusCode,
			Err:        model.ErrUpstreamError,
		}
	}

	var env model.Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, model.NewInternalError(fmt.Errorf("decoding envelope: %w", err))
	}
	return &env, nil
}

// === Auth ===

// SignIn authenticates and stores the session cookie in the jar. The
// cache is cleared so nothing from a previous session leaks through.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := env.DecodeData(&user); err != nil {
		return nil, err
	}
	c.store.Clear()
	return &user, nil
}

// SignOut drops the session and everything cached under it.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/signout", nil)
	c.store.Clear()
	return err
}

// === Cart ===

// GetCart returns the cart, cached until a cart mutation invalidates it.
func (c *Client) GetCart(ctx context.Context) (*model.Cart, error) {
	v, err := c.store.GetOrFetch(ctx, cache.KeyCart, func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/cart", nil)
		if err != nil {
			return nil, err
		}
		var cart model.Cart
		if err := env.DecodeData(&cart); err != nil {
			return nil, err
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Cart), nil
}

// AddToCart adds one unit of a product.
func (c *Client) AddToCart(ctx context.Context, productID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/cart-item/"+url.PathEscape(productID), nil)
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyCart)
	return nil
}

// UpdateCartLine sets the quantity of a line. Refused while that line
// already has an operation in flight.
func (c *Client) UpdateCartLine(ctx context.Context, lineID, productID string, count int) error {
	if !c.pending.Begin(lineID, checkout.OpUpdate) {
		return model.NewValidationError("line", "operation already in flight")
	}
	defer c.pending.End(lineID)

	_, err := c.do(ctx, http.MethodPut, "/api/cart/update", map[string]any{
		"productId": productID,
		"count":     count,
	})
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyCart)
	return nil
}

// RemoveCartLine deletes a line.
func (c *Client) RemoveCartLine(ctx context.Context, lineID, productID string) error {
	if !c.pending.Begin(lineID, checkout.OpRemove) {
		return model.NewValidationError("line", "operation already in flight")
	}
	defer c.pending.End(lineID)

	_, err := c.do(ctx, http.MethodDelete, "/api/cart-item/"+url.PathEscape(productID), nil)
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyCart)
	return nil
}

// EmptyCart clears the whole cart.
func (c *Client) EmptyCart(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/cart/empty", nil)
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyCart)
	return nil
}

// === Wishlist ===

// GetWishlist returns the wishlist and seeds the toggle controller with
// the confirmed flags.
func (c *Client) GetWishlist(ctx context.Context) (model.Wishlist, error) {
	v, err := c.store.GetOrFetch(ctx, cache.KeyWishlist, func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/wishlist", nil)
		if err != nil {
			return nil, err
		}
		var list model.Wishlist
		if err := env.DecodeData(&list); err != nil {
			return nil, err
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}

	// Full reconciliation: products the controller knew as wished but that
	// are absent from the fetched list (removed in another session) are
	// seeded back to not-wished.
	list := v.(model.Wishlist)
	c.Wishlist.SeedList(list.IDs())
	return list, nil
}

// wishlistAdapter lets the toggle controller drive gateway mutations.
type wishlistAdapter struct{ c *Client }

func (a wishlistAdapter) AddToWishlist(ctx context.Context, productID string) error {
	_, err := a.c.do(ctx, http.MethodPost, "/api/wishlist", map[string]string{"productId": productID})
	return err
}

func (a wishlistAdapter) RemoveFromWishlist(ctx context.Context, productID string) error {
	_, err := a.c.do(ctx, http.MethodDelete, "/api/wishlist/"+url.PathEscape(productID), nil)
	return err
}

// === Addresses ===

// ListAddresses returns the saved addresses, cached.
func (c *Client) ListAddresses(ctx context.Context) ([]model.Address, error) {
	v, err := c.store.GetOrFetch(ctx, cache.KeyAddresses, func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/addresses", nil)
		if err != nil {
			return nil, err
		}
		var addrs []model.Address
		if err := env.DecodeData(&addrs); err != nil {
			return nil, err
		}
		return addrs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Address), nil
}

// AddAddress saves a new address.
func (c *Client) AddAddress(ctx context.Context, addr model.Address) error {
	_, err := c.do(ctx, http.MethodPost, "/api/addresses/add", addr)
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyAddresses)
	return nil
}

// RemoveAddress deletes an address.
func (c *Client) RemoveAddress(ctx context.Context, addressID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/addresses/"+url.PathEscape(addressID), nil)
	if err != nil {
		return err
	}
	c.store.Invalidate(cache.KeyAddresses)
	return nil
}

// === Orders / checkout ===

// ListOrders returns the order history, cached.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	v, err := c.store.GetOrFetch(ctx, cache.KeyOrders, func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/orders", nil)
		if err != nil {
			return nil, err
		}
		var orders []model.Order
		if err := env.DecodeData(&orders); err != nil {
			return nil, err
		}
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Order), nil
}

// PlaceCashOrder creates a pay-on-delivery order. Satisfies
// checkout.Placer.
func (c *Client) PlaceCashOrder(ctx context.Context, cartID string, addr model.ShippingAddress) error {
	_, err := c.do(ctx, http.MethodPost, "/api/orders", map[string]any{
		"cartId":          cartID,
		"shippingAddress": addr,
	})
	if err != nil {
		return err
	}
	// The order consumed the cart.
	c.store.Invalidate(cache.KeyCart, cache.KeyOrders)
	return nil
}

// CreatePaymentSession asks for a hosted payment session and returns the
// redirect URL. Satisfies checkout.Placer.
func (c *Client) CreatePaymentSession(ctx context.Context, cartID, returnURL string, addr model.ShippingAddress) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/checkout-session", map[string]any{
		"cartId":          cartID,
		"url":             returnURL,
		"shippingAddress": addr,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := env.DecodeData(&payload); err != nil {
		return "", err
	}
	return payload.URL, nil
}

// NewCheckout starts a checkout flow bound to this client.
func (c *Client) NewCheckout() *checkout.Flow {
	return checkout.NewFlow(c)
}

// === Catalog ===

// ListProducts returns the catalog page for the given query parameters.
// Unfiltered listings are cached; filtered ones go straight through.
func (c *Client) ListProducts(ctx context.Context, query url.Values) ([]model.Product, error) {
	fetch := func(ctx context.Context) (any, error) {
		path := "/api/products"
		if len(query) > 0 {
			path += "?" + query.Encode()
		}
		env, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		var products []model.Product
		if err := env.DecodeData(&products); err != nil {
			return nil, err
		}
		return products, nil
	}

	var (
		v   any
		err error
	)
	if len(query) == 0 {
		v, err = c.store.GetOrFetch(ctx, cache.KeyProducts, fetch)
	} else {
		v, err = fetch(ctx)
	}
	if err != nil {
		return nil, err
	}
	return v.([]model.Product), nil
}

// GetProduct returns one product, cached per id.
func (c *Client) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	v, err := c.store.GetOrFetch(ctx, cache.ProductKey(productID), func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(productID), nil)
		if err != nil {
			return nil, err
		}
		var product model.Product
		if err := env.DecodeData(&product); err != nil {
			return nil, err
		}
		return &product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Product), nil
}

// ListCategories returns all categories, cached.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	v, err := c.store.GetOrFetch(ctx, cache.KeyCategories, func(ctx context.Context) (any, error) {
		env, err := c.do(ctx, http.MethodGet, "/api/categories", nil)
		if err != nil {
			return nil, err
		}
		var cats []model.Category
		if err := env.DecodeData(&cats); err != nil {
			return nil, err
		}
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Category), nil
}

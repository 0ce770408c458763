// Package model defines the wire types shared by the gateway, the upstream
// commerce client, and the storefront SDK, plus error and envelope handling.
package model

import "time"

// User is the profile embedded in the session cookie and returned on signin.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// Session pairs the authenticated user with the opaque bearer token issued
// by the commerce API. The token must never leave the signed cookie.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Address is a saved shipping address. Deletion is terminal; there is no
// undo on the client side.
type Address struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Details   string `json:"details"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// ShippingAddress is the address block required at checkout.
type ShippingAddress struct {
	Details string `json:"details"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// Order is immutable once created from a cart snapshot. The source cart is
// cleared upstream after creation; the gateway does not verify that.
type Order struct {
	ID              string          `json:"_id"`
	User            User            `json:"user"`
	CartItems       []CartLine      `json:"cartItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalOrderPrice float64         `json:"totalOrderPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	PaymentMethod   string          `json:"paymentMethodType"`
	IsPaid          bool            `json:"isPaid"`
	IsDelivered     bool            `json:"isDelivered"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Review belongs to the authoring user; ownership is enforced upstream.
type Review struct {
	ID        string    `json:"_id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	User      User      `json:"user"`
	Product   string    `json:"product"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is the subset of the catalog entry the storefront needs.
type Product struct {
	ID           string  `json:"_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	ImageCover   string  `json:"imageCover,omitempty"`
	Price        float64 `json:"price"`
	PriceAfter   float64 `json:"priceAfterDiscount,omitempty"`
	Quantity     int     `json:"quantity"`
	RatingsAvg   float64 `json:"ratingsAverage,omitempty"`
	RatingsCount int     `json:"ratingsQuantity,omitempty"`
	Category     string  `json:"category,omitempty"`
}

// Category groups products; subcategories reference a parent category.
type Category struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"` // parent, set on subcategories
}

// Wishlist is the fetched set of wishlisted products. Membership tests are
// linear over the fetched set; a product appears at most once.
type Wishlist []Product

// Contains reports whether the wishlist holds the given product.
func (w Wishlist) Contains(productID string) bool {
	for _, p := range w {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// IDs returns the product identifiers in the wishlist.
func (w Wishlist) IDs() []string {
	ids := make([]string, len(w))
	for i, p := range w {
		ids[i] = p.ID
	}
	return ids
}

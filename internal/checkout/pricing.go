// Package checkout holds the client-side checkout logic: order pricing,
// shipping-address validation, per-line pending state, and the checkout
// state machine. All money math uses decimals so display totals never
// accumulate float error.
package checkout

import (
	"regexp"

	"github.com/shopspring/decimal"

	"storefront-gateway/internal/model"
)

// Shipping pricing. Orders at or above the threshold ship free.
var (
	FreeShippingThreshold = decimal.NewFromInt(500)
	ShippingFee           = decimal.NewFromInt(60)
)

// ShippingCost returns the shipping fee for a cart subtotal. The
// threshold is inclusive: a subtotal of exactly 500 ships free.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

// OrderTotal returns subtotal plus shipping.
func OrderTotal(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(ShippingCost(subtotal))
}

// FreeShippingProgress returns how close the subtotal is to free
// shipping as a fraction in [0, 1].
func FreeShippingProgress(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.NewFromInt(1)
	}
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return subtotal.Div(FreeShippingThreshold)
}

// CartSubtotal converts the upstream float total into a decimal.
func CartSubtotal(cart *model.Cart) decimal.Decimal {
	if cart == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(cart.TotalCartPrice)
}

// Digits only, at least eleven of them.
var phonePattern = regexp.MustCompile(`^[0-9]{11,}$`)

// ValidateShippingAddress rejects incomplete checkout forms before any
// order is placed.
func ValidateShippingAddress(addr model.ShippingAddress) error {
	if addr.Details == "" {
		return model.NewValidationError("shippingAddress.details", "required")
	}
	if addr.City == "" {
		return model.NewValidationError("shippingAddress.city", "required")
	}
	if !phonePattern.MatchString(addr.Phone) {
		return model.NewValidationError("shippingAddress.phone", "must be at least 11 digits")
	}
	return nil
}

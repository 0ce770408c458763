package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront-gateway/internal/model"
)

// PaymentMethod selects how the order is paid.
type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayOnline PaymentMethod = "online"
)

// State is the checkout flow state.
type State string

const (
	// StateIdle: no method selected or form incomplete.
	StateIdle State = "idle"
	// StateReady: method selected and shipping form valid.
	StateReady State = "ready"
	// StateProcessing: an order or session request is in flight.
	StateProcessing State = "processing"
	// StateRedirected: terminal. Cash orders navigate to the order list,
	// online payments to the gateway URL.
	StateRedirected State = "redirected"
)

// ErrNotReady is returned by Submit when the flow has no valid method and
// form selected.
var ErrNotReady = errors.New("checkout not ready")

// ErrInFlight is returned when Submit is called while a previous submit is
// still processing.
var ErrInFlight = errors.New("checkout already processing")

// Placer is the subset of the upstream client checkout needs. Implemented
// by upstream.Client and by the storefront SDK.
type Placer interface {
	PlaceCashOrder(ctx context.Context, cartID string, addr model.ShippingAddress) error
	CreatePaymentSession(ctx context.Context, cartID, returnURL string, addr model.ShippingAddress) (redirectURL string, err error)
}

// Flow drives a single checkout attempt from method selection to redirect.
// A failed submit returns the flow to Ready with the error retained, so
// the buyer can retry without re-entering the form.
type Flow struct {
	mu     sync.Mutex
	placer Placer

	state   State
	method  PaymentMethod
	address model.ShippingAddress
	lastErr error

	// set on successful online submit
	redirectURL string
}

// NewFlow creates a checkout flow in the idle state.
func NewFlow(placer Placer) *Flow {
	return &Flow{placer: placer, state: StateIdle}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error from the last failed submit, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// RedirectURL returns where the buyer goes after a successful submit:
// the payment gateway for online, empty for cash (caller navigates to the
// order list).
func (f *Flow) RedirectURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirectURL
}

// Select records the payment method and shipping form. The flow becomes
// Ready only when the form validates; an invalid form keeps (or returns)
// it to Idle and reports why.
func (f *Flow) Select(method PaymentMethod, addr model.ShippingAddress) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateProcessing {
		return ErrInFlight
	}
	if method != PayCash && method != PayOnline {
		f.state = StateIdle
		return model.NewValidationError("paymentMethod", "must be cash or online")
	}
	if err := ValidateShippingAddress(addr); err != nil {
		f.state = StateIdle
		return err
	}

	f.method = method
	f.address = addr
	f.state = StateReady
	f.lastErr = nil
	return nil
}

// Submit places the order. Cash creates the order directly; online creates
// a payment session and records the redirect URL. On failure the flow
// returns to Ready with the error retained.
func (f *Flow) Submit(ctx context.Context, cartID string) error {
	f.mu.Lock()
	switch f.state {
	case StateProcessing:
		f.mu.Unlock()
		return ErrInFlight
	case StateReady:
		// proceed
	default:
		f.mu.Unlock()
		return ErrNotReady
	}
	f.state = StateProcessing
	method, addr := f.method, f.address
	f.mu.Unlock()

	var (
		redirect string
		err      error
	)
	switch method {
	case PayCash:
		err = f.placer.PlaceCashOrder(ctx, cartID, addr)
	case PayOnline:
		redirect, err = f.placer.CreatePaymentSession(ctx, cartID, "", addr)
		if err == nil && redirect == "" {
			err = fmt.Errorf("payment session returned no redirect URL")
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateReady
		f.lastErr = err
		return err
	}
	f.state = StateRedirected
	f.redirectURL = redirect
	f.lastErr = nil
	return nil
}

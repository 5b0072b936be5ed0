package shopclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// State is the checkout handoff's progress.
type State int

const (
	// StateIdle accepts a buy.
	StateIdle State = iota
	// StateInFlight waits for the checkout endpoint; buys are ignored.
	StateInFlight
	// StateRedirected has handed the checkout URL to the navigator. Terminal.
	StateRedirected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	case StateRedirected:
		return "redirected"
	default:
		return "unknown"
	}
}

// ErrTriggerDisabled is returned by Buy when a checkout is already in flight
// or done. No request is made.
var ErrTriggerDisabled = errors.New("checkout trigger disabled")

// CheckoutCreator opens a checkout session and returns its URL.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, priceID string) (string, error)
}

// Navigator sends the buyer to a URL.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Alerter shows the buyer a failure message.
type Alerter interface {
	Alert(message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(message string)

func (f AlerterFunc) Alert(message string) { f(message) }

// Initiator runs the buy button's workflow: one checkout request at a time,
// navigate on success, alert and return to idle on failure. There is no
// retry.
type Initiator struct {
	checkout CheckoutCreator
	nav      Navigator
	alert    Alerter
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewInitiator creates an idle initiator.
func NewInitiator(checkout CheckoutCreator, nav Navigator, alert Alerter, logger *slog.Logger) *Initiator {
	return &Initiator{checkout: checkout, nav: nav, alert: alert, logger: logger}
}

// State returns the current state.
func (i *Initiator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Enabled reports whether the trigger accepts a buy.
func (i *Initiator) Enabled() bool {
	return i.State() == StateIdle
}

// Buy requests a checkout for priceID and navigates to it.
func (i *Initiator) Buy(ctx context.Context, priceID string) error {
	if priceID == "" {
		i.alert.Alert(domain.CheckoutFailureAlert)
		return apperrors.InvalidInput("priceId is required")
	}

	i.mu.Lock()
	if i.state != StateIdle {
		i.mu.Unlock()
		return ErrTriggerDisabled
	}
	i.state = StateInFlight
	i.mu.Unlock()

	checkoutURL, err := i.checkout.CreateCheckout(ctx, priceID)
	if err != nil {
		i.transition(StateIdle)
		i.logger.ErrorContext(ctx, "checkout handoff failed",
			slog.String("price_id", priceID),
			slog.String("error", err.Error()),
		)
		i.alert.Alert(domain.CheckoutFailureAlert)
		return err
	}

	i.transition(StateRedirected)
	i.logger.InfoContext(ctx, "redirecting to checkout", slog.String("price_id", priceID))
	i.nav.Navigate(checkoutURL)
	return nil
}

func (i *Initiator) transition(s State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = s
}

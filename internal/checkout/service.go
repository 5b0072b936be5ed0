// Package checkout opens hosted checkout sessions on the payments platform
// on behalf of the storefront's buy buttons.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/provider"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SessionPlaceholder is replaced by the platform with the session id when
// it redirects to the success URL.
const SessionPlaceholder = "{CHECKOUT_SESSION_ID}"

var sessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_checkout_sessions_total",
		Help: "Checkout session creation attempts by outcome",
	},
	[]string{"outcome"},
)

// Service creates checkout sessions and looks up completed purchases.
type Service struct {
	provider   provider.Provider
	events     event.Publisher
	successURL string
	cancelURL  string
	logger     *slog.Logger
}

// NewService creates a new checkout service. baseURL is the storefront's
// public origin; the platform redirects back to it.
func NewService(p provider.Provider, events event.Publisher, baseURL string, logger *slog.Logger) *Service {
	base := strings.TrimRight(baseURL, "/")
	return &Service{
		provider:   p,
		events:     events,
		successURL: base + "/success?session_id=" + SessionPlaceholder,
		cancelURL:  base + "/",
		logger:     logger,
	}
}

// SuccessURL is where the platform sends the buyer after paying.
func (s *Service) SuccessURL() string { return s.successURL }

// CancelURL is where the platform sends the buyer after abandoning.
func (s *Service) CancelURL() string { return s.cancelURL }

// CreateSession opens a hosted checkout for one unit of priceID. It is not
// retried; a failure is logged and returned.
func (s *Service) CreateSession(ctx context.Context, priceID string) (*domain.CheckoutSession, error) {
	if priceID == "" {
		sessionsTotal.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInput("priceId is required")
	}

	session, err := s.provider.CreateCheckoutSession(ctx, domain.CheckoutSessionInput{
		PriceID:    priceID,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		sessionsTotal.WithLabelValues("failed").Inc()
		s.logger.ErrorContext(ctx, "failed to create checkout session",
			slog.String("price_id", priceID),
			slog.String("provider", s.provider.Name()),
			slog.String("error", err.Error()),
		)
		if perr := s.events.PublishSessionFailed(ctx, event.SessionFailedData{
			PriceID:       priceID,
			Provider:      s.provider.Name(),
			FailureReason: err.Error(),
		}); perr != nil {
			s.logger.WarnContext(ctx, "failed to publish checkout.session-failed event",
				slog.String("error", perr.Error()),
			)
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	sessionsTotal.WithLabelValues("created").Inc()
	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", session.ID),
		slog.String("price_id", priceID),
	)

	if err := s.events.PublishSessionCreated(ctx, event.SessionCreatedData{
		SessionID: session.ID,
		PriceID:   priceID,
		Provider:  s.provider.Name(),
	}); err != nil {
		// Do not fail the checkout if event publishing fails.
		s.logger.WarnContext(ctx, "failed to publish checkout.session-created event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	return session, nil
}

// Purchase summarises a completed checkout session for the success page.
func (s *Service) Purchase(ctx context.Context, sessionID string) (*domain.PurchaseSummary, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}
	summary, err := s.provider.GetPurchase(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return summary, nil
}

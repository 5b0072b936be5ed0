package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

var (
	providerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_provider_requests_total",
			Help: "Payments platform calls by operation and outcome",
		},
		[]string{"provider", "operation", "outcome"},
	)

	providerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_provider_request_duration_seconds",
			Help:    "Payments platform call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)
)

// Breaker decorates a Provider with a circuit breaker and call metrics.
// Answers that prove the platform is healthy (not found, rejected input,
// refused checkout) do not count toward tripping.
type Breaker struct {
	next   Provider
	cb     *gobreaker.CircuitBreaker[any]
	logger *slog.Logger
}

var _ Provider = (*Breaker)(nil)

// NewBreaker wraps next.
func NewBreaker(next Provider, cfg httpclient.CircuitBreakerConfig, logger *slog.Logger) *Breaker {
	cfg.IsSuccessful = healthyAnswer
	return &Breaker{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[any](httpclient.Settings(cfg, logger)),
		logger: logger,
	}
}

func healthyAnswer(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrInvalidInput) ||
		errors.Is(err, apperrors.ErrCheckoutFailed)
}

func (b *Breaker) Name() string { return b.next.Name() }

// State exposes the breaker state for diagnostics.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func (b *Breaker) ListProducts(ctx context.Context) ([]domain.RemoteProduct, error) {
	return call(ctx, b, "list_products", func() ([]domain.RemoteProduct, error) {
		return b.next.ListProducts(ctx)
	})
}

func (b *Breaker) GetProduct(ctx context.Context, id string) (*domain.RemoteProduct, error) {
	return call(ctx, b, "get_product", func() (*domain.RemoteProduct, error) {
		return b.next.GetProduct(ctx, id)
	})
}

func (b *Breaker) CreateCheckoutSession(ctx context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error) {
	return call(ctx, b, "create_checkout_session", func() (*domain.CheckoutSession, error) {
		return b.next.CreateCheckoutSession(ctx, input)
	})
}

func (b *Breaker) GetPurchase(ctx context.Context, sessionID string) (*domain.PurchaseSummary, error) {
	return call(ctx, b, "get_purchase", func() (*domain.PurchaseSummary, error) {
		return b.next.GetPurchase(ctx, sessionID)
	})
}

func call[T any](ctx context.Context, b *Breaker, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := b.cb.Execute(func() (any, error) { return fn() })
	providerDuration.WithLabelValues(b.next.Name(), op).Observe(time.Since(start).Seconds())
	providerRequests.WithLabelValues(b.next.Name(), op, outcome(err)).Inc()

	var zero T
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.WarnContext(ctx, "payments platform breaker rejected call",
			slog.String("operation", op),
			slog.String("state", b.cb.State().String()),
		)
		return zero, apperrors.ServiceUnavailable("payments platform temporarily unavailable")
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case healthyAnswer(err):
		return "refused"
	default:
		return "error"
	}
}

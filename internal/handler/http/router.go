package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/pages"
	"github.com/utafrali/storefront/internal/view"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "storefront"

// RouterConfig holds the router's tunables.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
	// CheckoutLimiter throttles checkout creation per client; nil disables it.
	CheckoutLimiter *middleware.RateLimiter
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cfg RouterConfig,
	pagesSvc *pages.Pages,
	checkoutService *checkout.Service,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.With(middleware.CacheControl(86400)).
		Handle("/static/*", http.StripPrefix("/static/", view.Static()))

	pageHandler := NewPageHandler(pagesSvc, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)

	// Pages
	r.Get("/", pageHandler.Home)
	r.Get("/product/{id}", pageHandler.Product)
	r.Get("/success", checkoutHandler.Success)

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.CheckoutLimiter != nil {
		throttle = cfg.CheckoutLimiter.Handler
	}

	r.With(middleware.NoStore, throttle).Post("/checkout", checkoutHandler.FormCheckout)

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS))

		r.Get("/pages/index", pageHandler.HomeProps)
		r.Get("/pages/product/{id}", pageHandler.ProductProps)

		r.With(middleware.NoStore, throttle, ContentTypeJSON).Post("/checkout", checkoutHandler.CreateCheckout)
	})

	return r
}

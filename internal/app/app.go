package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/pagecache"
	"github.com/utafrali/storefront/internal/pages"
	"github.com/utafrali/storefront/internal/provider"
	"github.com/utafrali/storefront/internal/provider/mock"
	"github.com/utafrali/storefront/internal/provider/stripe"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	limiter        *middleware.RateLimiter
	pages          *pages.Pages
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

var initTracer = tracing.InitTracer

// NewApp creates a new application instance, initializing all dependencies
// and pre-building the static pages. Whatever was opened before a failure
// is released before returning.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := initTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	defer func() {
		if err != nil {
			a.release()
		}
	}()
	healthHandler := health.NewHandler()

	// Payments platform behind a circuit breaker.
	platform, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	cbCfg := httpclient.DefaultCircuitBreakerConfig("payments-" + platform.Name())
	cbCfg.Timeout = cfg.BreakerTimeout
	cbCfg.FailureRatio = cfg.BreakerFailureRatio
	cbCfg.MinRequests = cfg.BreakerMinRequests
	prov := provider.NewBreaker(platform, cbCfg, logger)
	logger.Info("payments provider initialized", slog.String("provider", platform.Name()))

	// Page cache store.
	var store pagecache.Store
	switch cfg.PageCacheBackend {
	case config.CacheRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB
		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		if err := prometheus.Register(database.NewRedisPoolStatsCollector(rdb, handler.ServiceName)); err != nil {
			logger.Warn("redis pool metrics not registered", slog.String("error", err.Error()))
		}
		healthHandler.Register("redis", database.RedisHealthCheck(rdb))
		store = pagecache.NewRedisStore(rdb, cfg.PageCacheRetention)
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	default:
		store = pagecache.NewMemoryStore()
	}

	// Checkout events.
	var events event.Publisher = event.Noop{}
	if cfg.EventsEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(a.producer, logger)
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("checkout events disabled, KAFKA_BROKERS is empty")
	}

	// Build the dependency graph.
	projector := catalog.NewProjector(cfg.Policy, cfg.PlaceholderImageURL)
	cache := pagecache.New(store, logger, pagecache.WithGenerateTimeout(cfg.PageGenerateTimeout))
	a.pages = pages.New(pages.Config{
		CatalogRevalidate: cfg.CatalogRevalidate,
		ProductRevalidate: cfg.ProductRevalidate,
		StaticProductIDs:  cfg.StaticProductIDs,
		Fallback:          cfg.Fallback,
	},
		cache,
		catalog.NewListing(prov, projector, logger),
		catalog.NewResolver(prov, projector, logger),
		logger,
	)
	checkoutService := checkout.NewService(prov, events, cfg.BaseURL, logger)

	if cfg.CheckoutRateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.CheckoutRateLimitRPS, cfg.CheckoutRateLimitBurst, logger)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		CORS:              cors,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		CheckoutLimiter:   a.limiter,
	}, a.pages, checkoutService, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.PageGenerateTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Pre-build the home page and static product pages. A failed page is
	// generated on its first request instead.
	buildCtx, buildCancel := context.WithTimeout(context.Background(), cfg.PageGenerateTimeout)
	defer buildCancel()
	if err := a.pages.Prebuild(buildCtx); err != nil {
		logger.Warn("some pages were not prebuilt", slog.String("error", err.Error()))
	}

	return a, nil
}

func newProvider(cfg *config.Config, logger *slog.Logger) (provider.Provider, error) {
	switch cfg.PaymentsProvider {
	case config.ProviderStripe:
		p, err := stripe.New(stripe.Config{
			SecretKey: cfg.StripeSecretKey,
			APIURL:    cfg.StripeAPIURL,
			Timeout:   cfg.StripeTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init stripe provider: %w", err)
		}
		return p, nil
	default:
		return mock.NewProvider(mock.DefaultCatalog()...), nil
	}
}

// Handler returns the HTTP handler the server runs.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the storefront in order:
// 1. HTTP server (drain in-flight requests)
// 2. background page regenerations
// 3. Kafka producer, rate limiter, Redis
// 4. Tracer (flush pending spans)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pages.Wait()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// release closes what NewApp opened before it failed: the same order as
// Shutdown, without a server to drain.
func (a *App) release() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer tracerCancel()
	if err := a.tracerShutdown(tracerCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}

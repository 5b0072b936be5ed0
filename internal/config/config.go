package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Payments providers.
const (
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

// Page cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	// BaseURL is the public origin; checkout success and cancel URLs derive from it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Payments platform
	PaymentsProvider string        `env:"PAYMENTS_PROVIDER" envDefault:"mock"`
	StripeSecretKey  string        `env:"STRIPE_SECRET_KEY"`
	StripeAPIURL     string        `env:"STRIPE_API_URL"`
	StripeTimeout    time.Duration `env:"STRIPE_TIMEOUT" envDefault:"10s"`

	// Pages
	CatalogRevalidate   time.Duration `env:"CATALOG_REVALIDATE" envDefault:"2h"`
	ProductRevalidate   time.Duration `env:"PRODUCT_REVALIDATE" envDefault:"1h"`
	StaticProductIDs    []string      `env:"STATIC_PRODUCT_IDS" envDefault:"prod_QN9BghnQ4KZxZp" envSeparator:","`
	ProductFallback     string        `env:"PRODUCT_FALLBACK" envDefault:"true"`
	MalformedPolicy     string        `env:"MALFORMED_PRODUCT_POLICY" envDefault:"fail"`
	PlaceholderImageURL string        `env:"PLACEHOLDER_IMAGE_URL" envDefault:"/static/placeholder.svg"`
	PageGenerateTimeout time.Duration `env:"PAGE_GENERATE_TIMEOUT" envDefault:"30s"`

	// Page cache
	PageCacheBackend   string        `env:"PAGE_CACHE_BACKEND" envDefault:"memory"`
	PageCacheRetention time.Duration `env:"PAGE_CACHE_RETENTION" envDefault:"168h"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka; empty disables checkout events.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Checkout rate limiting per client IP; RPS 0 disables it.
	CheckoutRateLimitRPS   float64 `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"2"`
	CheckoutRateLimitBurst int     `env:"CHECKOUT_RATE_LIMIT_BURST" envDefault:"5"`

	// CORS for the props API and checkout endpoint
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Circuit breaker around the payments platform
	BreakerTimeout      time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Parsed during Load.
	Fallback domain.FallbackMode
	Policy   domain.MalformedPolicy
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants and fills the parsed fields.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	switch c.PaymentsProvider {
	case ProviderStripe:
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required when PAYMENTS_PROVIDER=stripe")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown PAYMENTS_PROVIDER %q (want stripe or mock)", c.PaymentsProvider)
	}

	if c.CatalogRevalidate <= 0 {
		return fmt.Errorf("CATALOG_REVALIDATE must be positive, got %s", c.CatalogRevalidate)
	}
	if c.ProductRevalidate <= 0 {
		return fmt.Errorf("PRODUCT_REVALIDATE must be positive, got %s", c.ProductRevalidate)
	}

	if c.Fallback, err = domain.ParseFallbackMode(c.ProductFallback); err != nil {
		return fmt.Errorf("PRODUCT_FALLBACK: %w", err)
	}
	if c.Policy, err = domain.ParseMalformedPolicy(c.MalformedPolicy); err != nil {
		return fmt.Errorf("MALFORMED_PRODUCT_POLICY: %w", err)
	}
	if c.Policy == domain.PolicyPlaceholder && c.PlaceholderImageURL == "" {
		return fmt.Errorf("PLACEHOLDER_IMAGE_URL is required when MALFORMED_PRODUCT_POLICY=placeholder")
	}

	switch c.PageCacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when PAGE_CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown PAGE_CACHE_BACKEND %q (want memory or redis)", c.PageCacheBackend)
	}

	if c.CheckoutRateLimitRPS < 0 {
		return fmt.Errorf("CHECKOUT_RATE_LIMIT_RPS must not be negative")
	}
	if c.CheckoutRateLimitRPS > 0 && c.CheckoutRateLimitBurst < 1 {
		return fmt.Errorf("CHECKOUT_RATE_LIMIT_BURST must be at least 1")
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1.0 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.BreakerFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// EventsEnabled reports whether checkout events go to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Package shopclient talks to a running storefront over its JSON API and
// drives the checkout handoff from outside a browser.
package shopclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const serviceName = "storefront"

// Client reads page props and creates checkout sessions.
type Client struct {
	baseURL string
	reads   *httpclient.CircuitBreakerClient
	writes  *httpclient.Client
}

// New creates a client for the storefront at baseURL. Nothing is retried.
// Reads sit behind a circuit breaker; checkout creation has no client-side
// timeout and waits on the transport's own limits.
func New(baseURL, userAgent string, logger *slog.Logger) *Client {
	readCfg := httpclient.DefaultConfig()
	readCfg.UserAgent = userAgent
	readCfg.MaxRetries = 0

	writeCfg := httpclient.DefaultConfig()
	writeCfg.UserAgent = userAgent
	writeCfg.MaxRetries = 0
	writeCfg.Timeout = 0

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		reads: httpclient.NewCircuitBreakerClient(
			httpclient.New(readCfg),
			httpclient.DefaultCircuitBreakerConfig(serviceName),
			logger,
		),
		writes: httpclient.New(writeCfg),
	}
}

// Catalog returns the listing page's products.
func (c *Client) Catalog(ctx context.Context) ([]domain.DisplayProduct, error) {
	resp, err := c.reads.Get(ctx, c.baseURL+"/api/pages/index")
	if err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}

	var props domain.CatalogProps
	if err := httpclient.DecodeJSON(resp, serviceName, &props); err != nil {
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	return props.Products, nil
}

// Product returns the detail page's product, or nil when the id resolves to
// nothing or is unknown. An empty id returns nil without a request.
func (c *Client) Product(ctx context.Context, id string) (*domain.DisplayProduct, error) {
	if id == "" {
		return nil, nil
	}

	resp, err := c.reads.Get(ctx, c.baseURL+"/api/pages/product/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	var props domain.ProductProps
	if err := httpclient.DecodeJSON(resp, serviceName, &props); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return props.Product, nil
}

// CreateCheckout posts {"priceId"} to the checkout endpoint and returns the
// hosted checkout URL.
func (c *Client) CreateCheckout(ctx context.Context, priceID string) (string, error) {
	resp, err := c.writes.PostJSON(ctx, c.baseURL+"/api/checkout", domain.CheckoutRequest{PriceID: priceID})
	if err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}

	var out domain.CheckoutResponse
	if err := httpclient.DecodeJSON(resp, serviceName, &out); err != nil {
		return "", fmt.Errorf("create checkout: %w", err)
	}
	if out.CheckoutURL == "" {
		return "", fmt.Errorf("create checkout: empty checkoutUrl in response")
	}
	return out.CheckoutURL, nil
}

// Package stripe adapts the Stripe API to provider.Provider.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/provider"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/tracing"
)

const tracerName = "github.com/utafrali/storefront/internal/provider/stripe"

// Config holds Stripe client configuration.
type Config struct {
	SecretKey string
	// APIURL overrides https://api.stripe.com, e.g. for stripe-mock.
	APIURL  string
	Timeout time.Duration
}

// Provider talks to Stripe. Network retries are disabled: a failed call
// surfaces to the page layer, which serves its stale copy or an error page.
type Provider struct {
	api    *client.API
	logger *slog.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New builds a Stripe provider.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	backend := func(t stripego.SupportedBackend, url string) stripego.Backend {
		bc := &stripego.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripego.Int64(0),
			LeveledLogger:     &leveledLogger{logger: logger},
		}
		if url != "" {
			bc.URL = stripego.String(url)
		}
		return stripego.GetBackendWithConfig(t, bc)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripego.Backends{
		API:     backend(stripego.APIBackend, cfg.APIURL),
		Connect: backend(stripego.ConnectBackend, cfg.APIURL),
		Uploads: backend(stripego.UploadsBackend, cfg.APIURL),
	})

	return &Provider{api: api, logger: logger}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

func (p *Provider) ListProducts(ctx context.Context) (_ []domain.RemoteProduct, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "stripe.products.list")
	defer func() { tracing.End(span, err) }()

	params := &stripego.ProductListParams{}
	params.Context = ctx
	params.AddExpand("data.default_price")

	it := p.api.Products.List(params)
	var products []domain.RemoteProduct
	for it.Next() {
		products = append(products, toRemoteProduct(it.Product()))
	}
	if err := it.Err(); err != nil {
		return nil, mapError("list products", err, nil)
	}

	span.SetAttributes(attribute.Int("stripe.products.count", len(products)))
	return products, nil
}

func (p *Provider) GetProduct(ctx context.Context, id string) (_ *domain.RemoteProduct, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "stripe.products.retrieve",
		attribute.String("stripe.product.id", id))
	defer func() { tracing.End(span, err) }()

	params := &stripego.ProductParams{}
	params.Context = ctx
	params.AddExpand("default_price")

	sp, err := p.api.Products.Get(id, params)
	if err != nil {
		return nil, mapError("retrieve product", err, func() error {
			return apperrors.NotFound("product", id)
		})
	}

	rp := toRemoteProduct(sp)
	return &rp, nil
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, in domain.CheckoutSessionInput) (_ *domain.CheckoutSession, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "stripe.checkout.sessions.create",
		attribute.String("stripe.price.id", in.PriceID))
	defer func() { tracing.End(span, err) }()

	params := &stripego.CheckoutSessionParams{
		Mode:       stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL: stripego.String(in.SuccessURL),
		CancelURL:  stripego.String(in.CancelURL),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{Price: stripego.String(in.PriceID), Quantity: stripego.Int64(1)},
		},
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		var se *stripego.Error
		if errors.As(err, &se) && se.Type == stripego.ErrorTypeInvalidRequest {
			return nil, apperrors.CheckoutFailed(se.Msg)
		}
		return nil, mapError("create checkout session", err, nil)
	}
	if s.URL == "" {
		return nil, apperrors.Upstream("payments platform returned a session without a URL", fmt.Errorf("session %s", s.ID))
	}

	return &domain.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *Provider) GetPurchase(ctx context.Context, sessionID string) (_ *domain.PurchaseSummary, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "stripe.checkout.sessions.retrieve")
	defer func() { tracing.End(span, err) }()

	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapError("retrieve checkout session", err, func() error {
			return apperrors.NotFound("checkout session", sessionID)
		})
	}

	summary := &domain.PurchaseSummary{SessionID: s.ID}
	if s.CustomerDetails != nil {
		summary.CustomerName = s.CustomerDetails.Name
	}
	if s.LineItems != nil {
		for _, li := range s.LineItems.Data {
			if li.Price == nil || li.Price.Product == nil {
				continue
			}
			summary.ProductNames = append(summary.ProductNames, li.Price.Product.Name)
			if len(li.Price.Product.Images) > 0 {
				summary.Images = append(summary.Images, li.Price.Product.Images[0])
			}
		}
	}
	return summary, nil
}

func toRemoteProduct(sp *stripego.Product) domain.RemoteProduct {
	return domain.RemoteProduct{
		ID:           sp.ID,
		Name:         sp.Name,
		Images:       sp.Images,
		Description:  sp.Description,
		DefaultPrice: toRemotePrice(sp.DefaultPrice),
	}
}

// toRemotePrice keeps UnitAmount nil for prices Stripe serialises with a
// null unit_amount: tiered and customer-chosen prices, and unexpanded ones.
func toRemotePrice(sp *stripego.Price) *domain.RemotePrice {
	if sp == nil {
		return nil
	}
	rp := &domain.RemotePrice{ID: sp.ID, Currency: string(sp.Currency)}
	fixed := sp.Currency != "" &&
		sp.BillingScheme != stripego.PriceBillingSchemeTiered &&
		sp.CustomUnitAmount == nil
	if fixed {
		amount := sp.UnitAmount
		rp.UnitAmount = &amount
	}
	return rp
}

// mapError converts a Stripe error. A 404 becomes notFound() when given;
// everything else is an upstream failure.
func mapError(op string, err error, notFound func() error) error {
	var se *stripego.Error
	if errors.As(err, &se) && notFound != nil &&
		(se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing) {
		return notFound()
	}
	return apperrors.Upstream("payments platform: "+op+" failed", err)
}

// leveledLogger routes stripe-go's internal logging through slog. Stripe's
// info level is per-request chatter, so it is demoted to debug.
type leveledLogger struct {
	logger *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

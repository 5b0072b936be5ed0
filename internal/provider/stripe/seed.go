package stripe

import (
	"context"
	"errors"

	stripego "github.com/stripe/stripe-go/v76"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/tracing"
)

// EnsureProduct creates rp, with its default price, unless a product with
// the same id exists. It reports whether a product was created. Existing
// products are left untouched.
func (p *Provider) EnsureProduct(ctx context.Context, rp domain.RemoteProduct) (created bool, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "stripe.products.ensure",
		attribute.String("stripe.product.id", rp.ID))
	defer func() { tracing.End(span, err) }()

	if _, err := p.GetProduct(ctx, rp.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	params := &stripego.ProductParams{
		ID:     stripego.String(rp.ID),
		Name:   stripego.String(rp.Name),
		Images: stripego.StringSlice(rp.Images),
	}
	if rp.Description != "" {
		params.Description = stripego.String(rp.Description)
	}
	if dp := rp.DefaultPrice; dp != nil && dp.UnitAmount != nil {
		params.DefaultPriceData = &stripego.ProductDefaultPriceDataParams{
			Currency:   stripego.String(dp.Currency),
			UnitAmount: stripego.Int64(*dp.UnitAmount),
		}
	}
	params.Context = ctx

	if _, err := p.api.Products.New(params); err != nil {
		return false, mapError("create product", err, nil)
	}
	return true, nil
}

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/provider"
	"github.com/utafrali/storefront/pkg/money"
)

// Listing produces the catalog page's products.
type Listing struct {
	provider  provider.Provider
	projector *Projector
	logger    *slog.Logger
}

// NewListing creates a new listing service.
func NewListing(p provider.Provider, projector *Projector, logger *slog.Logger) *Listing {
	return &Listing{provider: p, projector: projector, logger: logger}
}

// Products fetches the whole catalog and projects it in platform order.
// Fetch failures are returned unchanged in kind.
func (l *Listing) Products(ctx context.Context) ([]domain.DisplayProduct, error) {
	remote, err := l.provider.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	warnForeignCurrency(ctx, l.logger, remote...)

	products, skipped, err := l.projector.ProjectCatalog(remote)
	if err != nil {
		l.logger.ErrorContext(ctx, "catalog contains a malformed product",
			slog.String("policy", string(l.projector.Policy())),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("project catalog: %w", err)
	}
	for _, s := range skipped {
		l.logger.WarnContext(ctx, "skipping malformed product",
			slog.String("product_id", s.ProductID),
			slog.String("reason", string(s.Reason)),
		)
	}

	return products, nil
}

// warnForeignCurrency flags prices the fixed pt-BR formatting will mislabel.
func warnForeignCurrency(ctx context.Context, logger *slog.Logger, products ...domain.RemoteProduct) {
	for _, rp := range products {
		dp := rp.DefaultPrice
		if dp == nil || dp.Currency == "" || money.IsDisplayCurrency(dp.Currency) {
			continue
		}
		logger.WarnContext(ctx, "product price is not in the display currency",
			slog.String("product_id", rp.ID),
			slog.String("currency", dp.Currency),
		)
	}
}

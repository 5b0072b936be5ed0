package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/provider"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Resolver turns a product id into the detail page's product.
type Resolver struct {
	provider  provider.Provider
	projector *Projector
	logger    *slog.Logger
}

// NewResolver creates a new product resolver.
func NewResolver(p provider.Provider, projector *Projector, logger *slog.Logger) *Resolver {
	return &Resolver{provider: p, projector: projector, logger: logger}
}

// Resolve returns the product for id, or nil when there is nothing to show:
// an empty id (no call is made), an id the platform does not know, or a
// malformed product under the skip policy. Any other fetch failure is
// returned without retrying.
func (r *Resolver) Resolve(ctx context.Context, id string) (*domain.DisplayProduct, error) {
	if id == "" {
		return nil, nil
	}

	rp, err := r.provider.GetProduct(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		r.logger.InfoContext(ctx, "product not found", slog.String("product_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	warnForeignCurrency(ctx, r.logger, *rp)

	dp, err := r.projector.ProjectDetail(*rp)
	if err != nil {
		return nil, fmt.Errorf("project product: %w", err)
	}
	if dp == nil {
		r.logger.WarnContext(ctx, "malformed product resolved to nothing", slog.String("product_id", id))
	}
	return dp, nil
}

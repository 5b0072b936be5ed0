// Package provider is the storefront's port to the payments platform that
// owns the product catalog and hosted checkout.
package provider

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Provider defines the interface for payments platform integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// ListProducts returns the catalog in platform order, each product with
	// its default price expanded.
	ListProducts(ctx context.Context) ([]domain.RemoteProduct, error)

	// GetProduct retrieves one product with its default price expanded. An
	// unknown id yields an apperrors NotFound error.
	GetProduct(ctx context.Context, id string) (*domain.RemoteProduct, error)

	// CreateCheckoutSession opens a hosted checkout for one unit of a price.
	CreateCheckoutSession(ctx context.Context, input domain.CheckoutSessionInput) (*domain.CheckoutSession, error)

	// GetPurchase summarises a checkout session for the success page.
	GetPurchase(ctx context.Context, sessionID string) (*domain.PurchaseSummary, error)
}

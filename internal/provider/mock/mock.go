// Package mock is an in-memory payments platform for development and tests.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Operation names accepted by FailNext and Calls.
const (
	OpList     = "list_products"
	OpGet      = "get_product"
	OpCheckout = "create_checkout_session"
	OpPurchase = "get_purchase"
)

// Provider serves a fixed catalog and records checkout sessions in memory.
type Provider struct {
	mu       sync.Mutex
	products []domain.RemoteProduct
	sessions map[string]domain.PurchaseSummary
	failures map[string]error
	calls    map[string]int
	checkout string
}

// NewProvider creates a mock provider. With no products it serves
// DefaultCatalog.
func NewProvider(products ...domain.RemoteProduct) *Provider {
	if len(products) == 0 {
		products = DefaultCatalog()
	}
	return &Provider{
		products: products,
		sessions: make(map[string]domain.PurchaseSummary),
		failures: make(map[string]error),
		calls:    make(map[string]int),
		checkout: "https://checkout.mock.local/pay/",
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// FailNext makes the next call of op return err.
func (p *Provider) FailNext(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = err
}

// Calls returns how many times op was invoked.
func (p *Provider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// SetProducts replaces the catalog.
func (p *Provider) SetProducts(products []domain.RemoteProduct) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products = products
}

func (p *Provider) enter(op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[op]++
	if err, ok := p.failures[op]; ok {
		delete(p.failures, op)
		return err
	}
	return nil
}

func (p *Provider) ListProducts(_ context.Context) ([]domain.RemoteProduct, error) {
	if err := p.enter(OpList); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.RemoteProduct(nil), p.products...), nil
}

func (p *Provider) GetProduct(_ context.Context, id string) (*domain.RemoteProduct, error) {
	if err := p.enter(OpGet); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.products {
		if p.products[i].ID == id {
			prod := p.products[i]
			return &prod, nil
		}
	}
	return nil, apperrors.NotFound("product", id)
}

func (p *Provider) CreateCheckoutSession(_ context.Context, in domain.CheckoutSessionInput) (*domain.CheckoutSession, error) {
	if err := p.enter(OpCheckout); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var bought *domain.RemoteProduct
	for i := range p.products {
		if dp := p.products[i].DefaultPrice; dp != nil && dp.ID == in.PriceID {
			bought = &p.products[i]
			break
		}
	}
	if bought == nil {
		return nil, apperrors.CheckoutFailed("no such price: " + in.PriceID)
	}

	id := "cs_mock_" + uuid.New().String()
	p.sessions[id] = domain.PurchaseSummary{
		SessionID:    id,
		CustomerName: "Cliente Teste",
		ProductNames: []string{bought.Name},
		Images:       append([]string(nil), bought.Images...),
	}
	// No hosted page exists locally; jump straight to the completed state.
	url := p.checkout + id
	if in.SuccessURL != "" {
		url = SuccessURLFor(in.SuccessURL, id)
	}
	return &domain.CheckoutSession{ID: id, URL: url}, nil
}

// SuccessURLFor resolves the platform's session placeholder the way the
// hosted checkout does on completion.
func SuccessURLFor(successURL, sessionID string) string {
	return strings.ReplaceAll(successURL, "{CHECKOUT_SESSION_ID}", sessionID)
}

func (p *Provider) GetPurchase(_ context.Context, sessionID string) (*domain.PurchaseSummary, error) {
	if err := p.enter(OpPurchase); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	return &s, nil
}

func amount(v int64) *int64 { return &v }

// DefaultCatalog is the development catalog.
func DefaultCatalog() []domain.RemoteProduct {
	return []domain.RemoteProduct{
		{
			ID:           "prod_QN9BghnQ4KZxZp",
			Name:         "Camiseta Beyond the Limits",
			Images:       []string{"https://files.stripe.com/links/camiseta-beyond-the-limits.png"},
			Description:  "Camiseta 100% algodão com estampa exclusiva.",
			DefaultPrice: &domain.RemotePrice{ID: "price_beyond_the_limits", UnitAmount: amount(7990), Currency: "brl"},
		},
		{
			ID:           "prod_QN9CexplorerXp",
			Name:         "Camiseta Explorer",
			Images:       []string{"https://files.stripe.com/links/camiseta-explorer.png"},
			Description:  "Para quem não tem medo de explorar.",
			DefaultPrice: &domain.RemotePrice{ID: "price_explorer", UnitAmount: amount(6990), Currency: "brl"},
		},
		{
			ID:           "prod_QN9DignitelabSp",
			Name:         "Camiseta Ignite Lab",
			Images:       []string{"https://files.stripe.com/links/camiseta-ignite-lab.png"},
			Description:  "Edição limitada do Ignite Lab.",
			DefaultPrice: &domain.RemotePrice{ID: "price_ignite_lab", UnitAmount: amount(8990), Currency: "brl"},
		},
	}
}

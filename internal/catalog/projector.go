// Package catalog maps the payments platform's products into display
// records for the storefront pages.
package catalog

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/money"
)

// Projector converts remote products into DisplayProducts. It is pure: the
// same input always yields the same output.
type Projector struct {
	policy           domain.MalformedPolicy
	placeholderImage string
}

// NewProjector creates a projector applying policy to malformed products.
// placeholderImage is only used by domain.PolicyPlaceholder.
func NewProjector(policy domain.MalformedPolicy, placeholderImage string) *Projector {
	if policy == "" {
		policy = domain.PolicyFail
	}
	return &Projector{policy: policy, placeholderImage: placeholderImage}
}

// Policy returns the configured malformed product policy.
func (p *Projector) Policy() domain.MalformedPolicy {
	return p.policy
}

// ProjectCatalog projects a listing in input order. Under PolicySkip the
// malformed products are left out and reported in skipped; under PolicyFail
// the first malformed product aborts the projection.
func (p *Projector) ProjectCatalog(products []domain.RemoteProduct) (out []domain.DisplayProduct, skipped []*domain.MalformedProductError, err error) {
	out = make([]domain.DisplayProduct, 0, len(products))
	for _, rp := range products {
		dp, merr := p.project(rp)
		if merr != nil {
			switch p.policy {
			case domain.PolicySkip:
				skipped = append(skipped, merr)
				continue
			case domain.PolicyFail:
				return nil, nil, merr
			}
		}
		out = append(out, dp)
	}
	return out, skipped, nil
}

// ProjectDetail projects a single product for the detail page, adding the
// description and default price id. It returns nil, nil when the product is
// malformed under PolicySkip.
func (p *Projector) ProjectDetail(rp domain.RemoteProduct) (*domain.DisplayProduct, error) {
	dp, merr := p.project(rp)
	if merr != nil {
		switch p.policy {
		case domain.PolicySkip:
			return nil, nil
		case domain.PolicyFail:
			return nil, merr
		}
	}

	dp.Description = rp.Description
	if rp.DefaultPrice != nil && rp.DefaultPrice.UnitAmount != nil {
		dp.DefaultPriceID = rp.DefaultPrice.ID
	}
	return &dp, nil
}

// project builds the listing fields. When the product is malformed the
// returned record already carries placeholder values and the error names
// the first missing field.
func (p *Projector) project(rp domain.RemoteProduct) (domain.DisplayProduct, *domain.MalformedProductError) {
	dp := domain.DisplayProduct{ID: rp.ID, Name: rp.Name}
	var merr *domain.MalformedProductError

	if len(rp.Images) > 0 {
		dp.ImageURL = rp.Images[0]
	} else {
		dp.ImageURL = p.placeholderImage
		merr = &domain.MalformedProductError{ProductID: rp.ID, Reason: domain.ReasonNoImages}
	}

	if rp.DefaultPrice != nil && rp.DefaultPrice.UnitAmount != nil {
		dp.Price = money.FromMinorUnits(*rp.DefaultPrice.UnitAmount)
		dp.LocalePrice = money.Format(dp.Price)
	} else {
		dp.LocalePrice = money.Unavailable
		if merr == nil {
			merr = &domain.MalformedProductError{ProductID: rp.ID, Reason: domain.ReasonNoPrice}
		}
	}

	return dp, merr
}

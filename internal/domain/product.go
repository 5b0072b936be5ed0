package domain

// RemotePrice is a payments-platform price as returned when a product's
// default price is expanded. UnitAmount is in minor units and is nil for
// prices without a fixed amount (tiered or customer-chosen).
type RemotePrice struct {
	ID         string `json:"id"`
	UnitAmount *int64 `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// RemoteProduct is a payments-platform product. DefaultPrice is nil when the
// product has no default price or the price was not expanded.
type RemoteProduct struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Images       []string     `json:"images"`
	Description  string       `json:"description,omitempty"`
	DefaultPrice *RemotePrice `json:"default_price,omitempty"`
}

// DisplayProduct is the render-ready view of a product. Description and
// DefaultPriceID are only filled on the detail path.
type DisplayProduct struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ImageURL       string  `json:"imageUrl"`
	Price          float64 `json:"price"`
	LocalePrice    string  `json:"localePrice"`
	Description    string  `json:"description,omitempty"`
	DefaultPriceID string  `json:"defaultPriceId,omitempty"`
}

// Purchasable reports whether the product can be sent to checkout.
func (p DisplayProduct) Purchasable() bool {
	return p.DefaultPriceID != ""
}

// CatalogProps is the listing page's data.
type CatalogProps struct {
	Products []DisplayProduct `json:"products"`
}

// ProductProps is the detail page's data. Product is nil when the id
// resolved to nothing.
type ProductProps struct {
	Product *DisplayProduct `json:"product"`
}

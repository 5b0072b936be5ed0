// Package pages composes the storefront's page props on top of the catalog
// and the regeneration cache: what is pre-built, how long each page stays
// fresh, and how an id outside the pre-built set is served.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pagecache"
)

// HomeKey is the cache key of the listing page.
const HomeKey = "home"

// maxFailures caps the remembered background fallback failures. Past the
// cap an arbitrary entry is dropped; its next request shows the loading
// page again and retries.
const maxFailures = 1024

// errNoProduct marks an id outside the static set that resolved to nothing.
// It is never stored, so unknown ids cannot grow the page cache.
var errNoProduct = errors.New("no product for id")

// ProductKey is the cache key of a detail page.
func ProductKey(id string) string {
	return "product:" + id
}

// Config holds page composition settings.
type Config struct {
	CatalogRevalidate time.Duration
	ProductRevalidate time.Duration
	StaticProductIDs  []string
	Fallback          domain.FallbackMode
}

// DefaultConfig returns the storefront's standard windows and fallback mode.
func DefaultConfig() Config {
	return Config{
		CatalogRevalidate: 2 * time.Hour,
		ProductRevalidate: time.Hour,
		StaticProductIDs:  []string{"prod_QN9BghnQ4KZxZp"},
		Fallback:          domain.FallbackTrue,
	}
}

// HomePage is the listing page's props and how they were served.
type HomePage struct {
	Props  domain.CatalogProps
	Status pagecache.Status
}

// ProductPage is the detail page's props and how they were served. Loading
// is set when a fallback page is shown while the product resolves;
// NotFound is set when the fallback mode refuses ids outside the static set.
type ProductPage struct {
	Props    domain.ProductProps
	Status   pagecache.Status
	Loading  bool
	NotFound bool
}

// Pages builds page props.
type Pages struct {
	cfg      Config
	cache    *pagecache.Cache
	listing  *catalog.Listing
	resolver *catalog.Resolver
	logger   *slog.Logger
	static   map[string]struct{}

	// failed holds the last background fallback error per key so a
	// loading page does not spin forever on a product that cannot resolve.
	failed *failures
}

// New creates the page composer.
func New(cfg Config, cache *pagecache.Cache, listing *catalog.Listing, resolver *catalog.Resolver, logger *slog.Logger) *Pages {
	static := make(map[string]struct{}, len(cfg.StaticProductIDs))
	for _, id := range cfg.StaticProductIDs {
		static[id] = struct{}{}
	}
	return &Pages{
		cfg:      cfg,
		cache:    cache,
		listing:  listing,
		resolver: resolver,
		logger:   logger,
		static:   static,
		failed:   newFailures(maxFailures),
	}
}

// CatalogRevalidate is the listing page's freshness window.
func (p *Pages) CatalogRevalidate() time.Duration { return p.cfg.CatalogRevalidate }

// ProductRevalidate is the detail page's freshness window.
func (p *Pages) ProductRevalidate() time.Duration { return p.cfg.ProductRevalidate }

// StaticPaths returns the pre-built product ids.
func (p *Pages) StaticPaths() []string {
	return append([]string(nil), p.cfg.StaticProductIDs...)
}

// Home returns the listing page props.
func (p *Pages) Home(ctx context.Context) (HomePage, error) {
	props, status, err := pagecache.Load(ctx, p.cache, HomeKey, p.cfg.CatalogRevalidate, p.homeProps)
	if err != nil {
		return HomePage{Status: status}, fmt.Errorf("home page: %w", err)
	}
	return HomePage{Props: props, Status: status}, nil
}

// Product returns the detail page props for id.
func (p *Pages) Product(ctx context.Context, id string) (ProductPage, error) {
	return p.product(ctx, id, p.cfg.Fallback)
}

// ProductData is Product for data consumers, who cannot use a loading
// page: an id outside the static set is resolved before returning unless
// the fallback mode refuses it.
func (p *Pages) ProductData(ctx context.Context, id string) (ProductPage, error) {
	mode := p.cfg.Fallback
	if mode == domain.FallbackTrue {
		mode = domain.FallbackBlocking
	}
	return p.product(ctx, id, mode)
}

func (p *Pages) product(ctx context.Context, id string, mode domain.FallbackMode) (ProductPage, error) {
	if id == "" {
		return ProductPage{Status: pagecache.StatusMiss}, nil
	}

	key := ProductKey(id)
	gen := pagecache.Encode(p.productProps(id))

	if data, status, ok := p.cache.Lookup(ctx, key, p.cfg.ProductRevalidate, gen); ok {
		props, err := pagecache.Decode[domain.ProductProps](data)
		if err != nil {
			return ProductPage{Status: status}, fmt.Errorf("product page %s: %w", id, err)
		}
		return ProductPage{Props: props, Status: status}, nil
	}

	_, isStatic := p.static[id]
	if !isStatic {
		switch mode {
		case domain.FallbackFalse:
			return ProductPage{Status: pagecache.StatusMiss, NotFound: true}, nil
		case domain.FallbackTrue:
			if err, ok := p.failed.take(key); ok {
				if errors.Is(err, errNoProduct) {
					return ProductPage{Status: pagecache.StatusMiss}, nil
				}
				return ProductPage{Status: pagecache.StatusMiss}, fmt.Errorf("product page %s: %w", id, err)
			}
			p.cache.Background(ctx, key, "fallback", p.recordFailure(key, gen))
			return ProductPage{Status: pagecache.StatusFallback, Loading: true}, nil
		}
	}

	data, status, err := p.cache.Get(ctx, key, p.cfg.ProductRevalidate, gen)
	if errors.Is(err, errNoProduct) {
		return ProductPage{Status: status}, nil
	}
	if err != nil {
		return ProductPage{Status: status}, fmt.Errorf("product page %s: %w", id, err)
	}
	props, err := pagecache.Decode[domain.ProductProps](data)
	if err != nil {
		return ProductPage{Status: status}, fmt.Errorf("product page %s: %w", id, err)
	}
	return ProductPage{Props: props, Status: status}, nil
}

// Prebuild generates the listing page and every static product page.
// Failures are collected so the caller can log them; the affected pages
// are generated on first request instead.
func (p *Pages) Prebuild(ctx context.Context) error {
	start := time.Now()
	var errs []error

	if err := p.cache.Prime(ctx, HomeKey, pagecache.Encode(p.homeProps)); err != nil {
		errs = append(errs, fmt.Errorf("prebuild %s: %w", HomeKey, err))
	}
	for _, id := range p.cfg.StaticProductIDs {
		if err := p.cache.Prime(ctx, ProductKey(id), pagecache.Encode(p.productProps(id))); err != nil {
			errs = append(errs, fmt.Errorf("prebuild %s: %w", ProductKey(id), err))
		}
	}

	p.logger.InfoContext(ctx, "pages prebuilt",
		slog.Int("pages", 1+len(p.cfg.StaticProductIDs)),
		slog.Int("failed", len(errs)),
		slog.Duration("took", time.Since(start)),
	)
	return errors.Join(errs...)
}

// Wait blocks until background regenerations have finished.
func (p *Pages) Wait() {
	p.cache.Wait()
}

func (p *Pages) homeProps(ctx context.Context) (domain.CatalogProps, error) {
	products, err := p.listing.Products(ctx)
	if err != nil {
		return domain.CatalogProps{}, err
	}
	return domain.CatalogProps{Products: products}, nil
}

func (p *Pages) productProps(id string) func(context.Context) (domain.ProductProps, error) {
	return func(ctx context.Context) (domain.ProductProps, error) {
		dp, err := p.resolver.Resolve(ctx, id)
		if err != nil {
			return domain.ProductProps{}, err
		}
		if _, isStatic := p.static[id]; dp == nil && !isStatic {
			return domain.ProductProps{}, errNoProduct
		}
		return domain.ProductProps{Product: dp}, nil
	}
}

func (p *Pages) recordFailure(key string, gen pagecache.GenerateFunc) pagecache.GenerateFunc {
	return func(ctx context.Context) ([]byte, error) {
		data, err := gen(ctx)
		if err != nil {
			p.failed.put(key, err)
			return nil, err
		}
		p.failed.take(key)
		return data, nil
	}
}

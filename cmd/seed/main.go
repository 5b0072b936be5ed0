// Command seed creates the development catalog in a Stripe test account.
// Products that already exist are skipped, so it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/utafrali/storefront/internal/provider/mock"
	"github.com/utafrali/storefront/internal/provider/stripe"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/logger"
)

type settings struct {
	StripeSecretKey string        `env:"STRIPE_SECRET_KEY,required"`
	StripeAPIURL    string        `env:"STRIPE_API_URL"`
	StripeTimeout   time.Duration `env:"STRIPE_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	dryRun := pflag.BoolP("dry-run", "n", false, "list the products that would be seeded")
	pflag.Parse()

	var cfg settings
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(2)
	}
	log := logger.NewText(cfg.LogLevel, os.Stderr)

	if strings.HasPrefix(cfg.StripeSecretKey, "sk_live_") {
		log.Error("refusing to seed a live Stripe account")
		os.Exit(2)
	}

	catalog := mock.DefaultCatalog()
	if *dryRun {
		for _, p := range catalog {
			fmt.Printf("%s\t%s\n", p.ID, p.Name)
		}
		return
	}

	p, err := stripe.New(stripe.Config{
		SecretKey: cfg.StripeSecretKey,
		APIURL:    cfg.StripeAPIURL,
		Timeout:   cfg.StripeTimeout,
	}, log)
	if err != nil {
		log.Error("failed to init stripe", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var errs []error
	for _, rp := range catalog {
		created, err := p.EnsureProduct(ctx, rp)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed %s: %w", rp.ID, err))
			continue
		}
		log.Info("product seeded",
			slog.String("product_id", rp.ID),
			slog.Bool("created", created),
		)
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

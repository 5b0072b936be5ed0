// Command shopctl browses a running storefront and starts checkouts from the
// command line.
//
//	shopctl list
//	shopctl show <product-id>
//	shopctl buy <price-id>
//	shopctl buy --product <product-id>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/utafrali/storefront/internal/shopclient"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/logger"
)

const (
	endpointFlag = "endpoint"
	productFlag  = "product"
	logLevelFlag = "log-level"
)

type settings struct {
	Endpoint string `env:"ENDPOINT" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var env settings
	if err := pkgconfig.LoadPrefixed(&env, "SHOPCTL_"); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	flags := pflag.NewFlagSet("shopctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	endpoint := flags.StringP(endpointFlag, "e", env.Endpoint, "storefront base URL")
	productID := flags.StringP(productFlag, "p", "", "buy: resolve the price from this product")
	logLevel := flags.String(logLevelFlag, env.LogLevel, "log level")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: shopctl [flags] list | show <product-id> | buy <price-id> | buy --product <product-id>")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	log := logger.NewText(*logLevel, stderr)
	client := shopclient.New(*endpoint, "shopctl", log)

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 2
	}

	var err error
	switch rest[0] {
	case "list":
		err = list(ctx, client, stdout)
	case "show":
		if len(rest) != 2 {
			flags.Usage()
			return 2
		}
		err = show(ctx, client, rest[1], stdout)
	case "buy":
		priceID := ""
		if len(rest) == 2 {
			priceID = rest[1]
		}
		if *productID != "" {
			priceID, err = priceOf(ctx, client, *productID)
			if err != nil {
				break
			}
		}
		initiator := shopclient.NewInitiator(client,
			shopclient.NavigatorFunc(func(url string) { fmt.Fprintln(stdout, url) }),
			shopclient.AlerterFunc(func(message string) { fmt.Fprintln(stderr, message) }),
			log,
		)
		err = initiator.Buy(ctx, priceID)
	default:
		flags.Usage()
		return 2
	}

	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func list(ctx context.Context, client *shopclient.Client, w io.Writer) error {
	products, err := client.Catalog(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.LocalePrice)
	}
	return tw.Flush()
}

func show(ctx context.Context, client *shopclient.Client, id string, w io.Writer) error {
	p, err := client.Product(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %s not found", id)
	}

	fmt.Fprintf(w, "%s\n%s\n\n%s\n\nimage: %s\n", p.Name, p.LocalePrice, p.Description, p.ImageURL)
	if p.Purchasable() {
		fmt.Fprintf(w, "price: %s\n", p.DefaultPriceID)
	} else {
		fmt.Fprintln(w, "not available for purchase")
	}
	return nil
}

func priceOf(ctx context.Context, client *shopclient.Client, id string) (string, error) {
	p, err := client.Product(ctx, id)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("product %s not found", id)
	}
	if !p.Purchasable() {
		return "", fmt.Errorf("product %s is not available for purchase", id)
	}
	return p.DefaultPriceID, nil
}

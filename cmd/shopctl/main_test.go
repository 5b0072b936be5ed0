package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func fakeStorefront(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/pages/index", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"products":[{"id":"prod_a","name":"Camiseta A","localePrice":"R$ 79,90"},{"id":"prod_b","name":"Camiseta B","localePrice":"R$ 69,90"}]}`)
	})
	mux.HandleFunc("GET /api/pages/product/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.PathValue("id") {
		case "prod_a":
			_, _ = io.WriteString(w, `{"product":{"id":"prod_a","name":"Camiseta A","localePrice":"R$ 79,90","description":"Algodão","imageUrl":"a.png","defaultPriceId":"price_a"}}`)
		case "prod_nopr":
			_, _ = io.WriteString(w, `{"product":{"id":"prod_nopr","name":"Sem preço","localePrice":"Preço indisponível"}}`)
		default:
			_, _ = io.WriteString(w, `{"product":null}`)
		}
	})
	mux.HandleFunc("POST /api/checkout", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if !bytes.Contains(body, []byte("price_a")) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"error":{"code":"CHECKOUT_FAILED","message":"no such price"}}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"checkoutUrl":"https://checkout.stripe.com/c/pay/cs_1"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestList(t *testing.T) {
	srv := fakeStorefront(t)

	code, out, _ := runCmd(t, "--endpoint", srv.URL, "list")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "prod_a")
	assert.Contains(t, out, "Camiseta B")
	assert.Contains(t, out, "R$ 69,90")
}

func TestShow(t *testing.T) {
	srv := fakeStorefront(t)

	code, out, _ := runCmd(t, "-e", srv.URL, "show", "prod_a")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Camiseta A")
	assert.Contains(t, out, "price: price_a")

	code, out, _ = runCmd(t, "-e", srv.URL, "show", "prod_nopr")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "not available for purchase")

	code, _, errOut := runCmd(t, "-e", srv.URL, "show", "prod_gone")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "product prod_gone not found")
}

func TestBuy_PrintsCheckoutURL(t *testing.T) {
	srv := fakeStorefront(t)

	code, out, _ := runCmd(t, "-e", srv.URL, "buy", "price_a")

	require.Equal(t, 0, code)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1\n", out)
}

func TestBuy_ByProduct(t *testing.T) {
	srv := fakeStorefront(t)

	code, out, _ := runCmd(t, "-e", srv.URL, "buy", "--product", "prod_a")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "cs_1")
}

func TestBuy_FailureAlerts(t *testing.T) {
	srv := fakeStorefront(t)

	code, out, errOut := runCmd(t, "-e", srv.URL, "buy", "price_x")

	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, domain.CheckoutFailureAlert)
}

func TestBuy_UnpurchasableProduct(t *testing.T) {
	srv := fakeStorefront(t)

	code, _, errOut := runCmd(t, "-e", srv.URL, "buy", "-p", "prod_nopr")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not available for purchase")
}

func TestEndpointFromEnv(t *testing.T) {
	srv := fakeStorefront(t)
	t.Setenv("SHOPCTL_ENDPOINT", srv.URL)

	code, out, _ := runCmd(t, "list")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "prod_a")
}

func TestUsage(t *testing.T) {
	code, _, errOut := runCmd(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: shopctl")

	code, _, _ = runCmd(t, "refund")
	assert.Equal(t, 2, code)

	code, _, _ = runCmd(t, "--help")
	assert.Equal(t, 0, code)
}

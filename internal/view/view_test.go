package view

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleProduct() *domain.DisplayProduct {
	return &domain.DisplayProduct{
		ID:             "prod_1",
		Name:           "Camiseta Explorer",
		ImageURL:       "https://files.stripe.com/explorer.png",
		Price:          69.9,
		LocalePrice:    "R$ 69,90",
		Description:    "Para quem não tem medo de explorar.",
		DefaultPriceID: "price_1",
	}
}

func TestHome(t *testing.T) {
	html := render(t, Home(domain.CatalogProps{Products: []domain.DisplayProduct{*sampleProduct()}}))

	assert.Contains(t, html, "<title>Home | Ignite Shop</title>")
	assert.Contains(t, html, `href="/product/prod_1"`)
	assert.Contains(t, html, `alt="Imagem do produto Camiseta Explorer"`)
	assert.Contains(t, html, "Camiseta Explorer")
	assert.Contains(t, html, "R$ 69,90")
	assert.Contains(t, html, `href="/static/app.css"`)
}

func TestHome_Empty(t *testing.T) {
	html := render(t, Home(domain.CatalogProps{}))
	assert.Contains(t, html, "Nenhum produto")
}

func TestProduct(t *testing.T) {
	html := render(t, Product(sampleProduct(), false))

	assert.Contains(t, html, "<title>Camiseta Explorer | Ignite Shop</title>")
	assert.Contains(t, html, "Para quem não tem medo de explorar.")
	assert.Contains(t, html, `alt="Imagem do produto Camiseta Explorer"`)
	assert.Contains(t, html, `name="priceId" value="price_1"`)
	assert.Contains(t, html, `"/api/checkout"`)
	assert.Contains(t, html, "Falha ao redirecionar para o checkout!")
	assert.NotContains(t, html, `role="alert"`)
	assert.NotContains(t, html, " disabled>")
}

func TestProduct_NotPurchasableDisablesButton(t *testing.T) {
	p := sampleProduct()
	p.DefaultPriceID = ""

	html := render(t, Product(p, false))
	assert.Contains(t, html, `id="buy-button" disabled>`)
}

func TestProduct_CheckoutFailedShowsAlert(t *testing.T) {
	html := render(t, Product(sampleProduct(), true))
	assert.Contains(t, html, `role="alert"`)
}

func TestProduct_EscapesRemoteText(t *testing.T) {
	p := sampleProduct()
	p.Name = `<script>alert(1)</script>`

	html := render(t, Product(p, false))
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestLoading_RefreshesItself(t *testing.T) {
	html := render(t, Loading(2))
	assert.Contains(t, html, `<meta http-equiv="refresh" content="2">`)
	assert.Contains(t, html, "Carregando")
}

func TestSuccess(t *testing.T) {
	html := render(t, Success(&domain.PurchaseSummary{
		CustomerName: "Diego",
		ProductNames: []string{"Camiseta A", "Camiseta B"},
		Images:       []string{"https://img/a.png", "https://img/b.png"},
	}))

	assert.Contains(t, html, "Compra efetuada!")
	assert.Contains(t, html, "<strong>Diego</strong>")
	assert.Contains(t, html, "<strong>Camiseta A</strong>, <strong>Camiseta B</strong>")
	assert.Contains(t, html, `src="https://img/b.png"`)
}

func TestNotFoundAndError(t *testing.T) {
	assert.Contains(t, render(t, NotFound()), "Produto não encontrado")
	assert.Contains(t, render(t, Error()), "Algo deu errado")
}

func TestRender_SetsStatusAndContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/product/x", nil)

	Render(rec, req, http.StatusNotFound, NotFound())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Produto não encontrado")
}

func TestStatic(t *testing.T) {
	srv := http.StripPrefix("/static/", Static())

	for _, path := range []string{"/static/app.css", "/static/logo.svg", "/static/placeholder.svg"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Camiseta | Ignite Shop", Title("Camiseta"))
}

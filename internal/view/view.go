// Package view renders the storefront's HTML pages. Pages are html/template
// files embedded in the binary and exposed as templ components.
package view

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

// ShopName is appended to every page title.
const ShopName = "Ignite Shop"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var (
	homeTmpl    = parse("home")
	productTmpl = parse("product")
	loadingTmpl = parse("loading")
	successTmpl = parse("success")
	errorTmpl   = parse("error")
)

// parse pairs the layout with one page; the page defines "content".
func parse(page string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html"))
}

// page is the layout's data.
type page struct {
	Title   string
	Refresh int
	Body    any
}

// Title formats a page title.
func Title(name string) string {
	return name + " | " + ShopName
}

// Home renders the product listing.
func Home(props domain.CatalogProps) templ.Component {
	return templ.FromGoHTML(homeTmpl, page{Title: Title("Home"), Body: props})
}

// ProductView is the detail page's data.
type ProductView struct {
	Product        *domain.DisplayProduct
	CheckoutFailed bool
	FailureMessage string
}

// Product renders a product's detail page. checkoutFailed shows the failure
// alert inline, for buyers without JavaScript coming back from POST /checkout.
func Product(p *domain.DisplayProduct, checkoutFailed bool) templ.Component {
	return templ.FromGoHTML(productTmpl, page{
		Title: Title(p.Name),
		Body: ProductView{
			Product:        p,
			CheckoutFailed: checkoutFailed,
			FailureMessage: domain.CheckoutFailureAlert,
		},
	})
}

// Loading renders the placeholder shown while a product outside the
// pre-built set resolves. The page reloads itself after refresh seconds.
func Loading(refresh int) templ.Component {
	return templ.FromGoHTML(loadingTmpl, page{Title: Title("Carregando"), Refresh: refresh})
}

// Success renders the purchase confirmation.
func Success(s *domain.PurchaseSummary) templ.Component {
	return templ.FromGoHTML(successTmpl, page{Title: Title("Compra efetuada"), Body: s})
}

// ErrorView is the error page's data.
type ErrorView struct {
	Heading string
	Message string
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return templ.FromGoHTML(errorTmpl, page{
		Title: Title("Produto não encontrado"),
		Body:  ErrorView{Heading: "Produto não encontrado", Message: "O produto que você procura não existe ou não está mais disponível."},
	})
}

// Error renders the page shown when the catalog could not be loaded.
func Error() templ.Component {
	return templ.FromGoHTML(errorTmpl, page{
		Title: Title("Erro"),
		Body:  ErrorView{Heading: "Algo deu errado", Message: "Não foi possível carregar a loja agora. Tente novamente em instantes."},
	})
}

// Render writes c with status. Rendering is buffered, so a template error
// still yields a clean 500.
func Render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c,
		templ.WithStatus(status),
		templ.WithErrorHandler(renderFailed),
	).ServeHTTP(w, r)
}

func renderFailed(r *http.Request, err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	})
}

// Static serves the embedded stylesheet and images. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

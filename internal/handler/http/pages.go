package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/pages"
	"github.com/utafrali/storefront/internal/view"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// CacheHeader reports how page props were served.
const CacheHeader = "X-Cache"

// loadingRefresh is how often the fallback page polls, in seconds.
const loadingRefresh = 1

// PageHandler serves the storefront's HTML pages and their JSON props.
type PageHandler struct {
	pages  *pages.Pages
	logger *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(p *pages.Pages, logger *slog.Logger) *PageHandler {
	return &PageHandler{pages: p, logger: logger}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Home(r.Context())
	w.Header().Set(CacheHeader, string(page.Status))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	setRevalidate(w, h.pages.CatalogRevalidate())
	view.Render(w, r, http.StatusOK, view.Home(page.Props))
}

// Product handles GET /product/{id}
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := h.pages.Product(r.Context(), id)
	w.Header().Set(CacheHeader, string(page.Status))
	switch {
	case err != nil:
		h.renderError(w, r, err)
	case page.Loading:
		w.Header().Set("Cache-Control", "no-store")
		view.Render(w, r, http.StatusOK, view.Loading(loadingRefresh))
	case page.NotFound || page.Props.Product == nil:
		setRevalidate(w, h.pages.ProductRevalidate())
		view.Render(w, r, http.StatusNotFound, view.NotFound())
	default:
		setRevalidate(w, h.pages.ProductRevalidate())
		failed := r.URL.Query().Get("checkout") == "failed"
		view.Render(w, r, http.StatusOK, view.Product(page.Props.Product, failed))
	}
}

// HomeProps handles GET /api/pages/index
func (h *PageHandler) HomeProps(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Home(r.Context())
	w.Header().Set(CacheHeader, string(page.Status))
	if err != nil {
		httputil.WriteError(w, r, pageError(err), h.logger)
		return
	}

	setRevalidate(w, h.pages.CatalogRevalidate())
	httputil.WriteJSON(w, http.StatusOK, page.Props)
}

// ProductProps handles GET /api/pages/product/{id}
func (h *PageHandler) ProductProps(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	page, err := h.pages.ProductData(r.Context(), id)
	w.Header().Set(CacheHeader, string(page.Status))
	if err != nil {
		httputil.WriteError(w, r, pageError(err), h.logger)
		return
	}
	if page.NotFound {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), h.logger)
		return
	}

	setRevalidate(w, h.pages.ProductRevalidate())
	httputil.WriteJSON(w, http.StatusOK, page.Props)
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	err = pageError(err)
	status := apperrors.HTTPStatus(err)
	h.logger.ErrorContext(r.Context(), "failed to build page",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	w.Header().Set("Cache-Control", "no-store")
	view.Render(w, r, status, view.Error())
}

// pageError classifies a malformed catalog as an upstream failure.
func pageError(err error) error {
	if errors.Is(err, domain.ErrMalformedProduct) {
		return apperrors.Upstream("payments platform returned a malformed product", err)
	}
	return err
}

func setRevalidate(w http.ResponseWriter, window time.Duration) {
	w.Header().Set("Cache-Control", middleware.RevalidateCacheControl(window))
}

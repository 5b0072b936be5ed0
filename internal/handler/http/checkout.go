package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/view"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// CheckoutHandler opens checkout sessions and shows completed purchases.
type CheckoutHandler struct {
	service *checkout.Service
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(svc *checkout.Service, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// CreateCheckout handles POST /api/checkout. The body is {"priceId"} and a
// created session answers 201 {"checkoutUrl"}.
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), req.PriceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, domain.CheckoutResponse{CheckoutURL: session.URL})
}

// FormCheckout handles POST /checkout from the buy form when scripts are
// unavailable: success redirects to the hosted checkout, failure back to the
// product page with the alert shown.
func (h *CheckoutHandler) FormCheckout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session, err := h.service.CreateSession(r.Context(), r.PostForm.Get("priceId"))
	if err != nil {
		back := "/"
		if id := r.PostForm.Get("productId"); id != "" {
			back = "/product/" + url.PathEscape(id) + "?checkout=failed"
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, session.URL, http.StatusSeeOther)
}

// Success handles GET /success?session_id=
func (h *CheckoutHandler) Success(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	summary, err := h.service.Purchase(r.Context(), sessionID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		view.Render(w, r, http.StatusNotFound, view.NotFound())
	case err != nil:
		h.logger.ErrorContext(r.Context(), "failed to load purchase",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		view.Render(w, r, apperrors.HTTPStatus(err), view.Error())
	default:
		view.Render(w, r, http.StatusOK, view.Success(summary))
	}
}

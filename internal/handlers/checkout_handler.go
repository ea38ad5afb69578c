package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/cart"
	"github.com/ivv-intern/storefront/internal/middleware"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/service"
)

// CheckoutHandler turns the caller's cart into an order.
type CheckoutHandler struct {
	service *service.CheckoutService
	cookies *cart.CookieStore
	logger  *slog.Logger
}

func NewCheckoutHandler(service *service.CheckoutService, cookies *cart.CookieStore, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		cookies: cookies,
		logger:  logger,
	}
}

// Checkout handles POST /api/checkout. Products in the body take precedence;
// without them the cart cookie is checked out. On success the cart cookie is
// cleared.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.KindUnauthenticated, "login required", h.logger)
		return
	}

	var req models.CheckoutRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	c := h.cookies.Load(r)
	if len(req.Products) > 0 {
		var err error
		if c, err = req.Cart(); err != nil {
			WriteAppError(w, r, err, h.logger)
			return
		}
	}

	result, err := h.service.Checkout(r.Context(), user, c)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.cookies.Clear(w)
	WriteJSON(w, http.StatusCreated, models.CheckoutResponse{
		Message:      "success",
		Code:         http.StatusCreated,
		CheckoutLink: result.CheckoutLink,
		Order:        result.Order.View(),
	}, h.logger)
}

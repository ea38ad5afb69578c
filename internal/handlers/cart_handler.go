package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ivv-intern/storefront/internal/cart"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/service"
)

// CartHandler serves the cookie-backed shopping cart.
type CartHandler struct {
	service *service.CartService
	cookies *cart.CookieStore
	logger  *slog.Logger
}

func NewCartHandler(service *service.CartService, cookies *cart.CookieStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		cookies: cookies,
		logger:  logger,
	}
}

// GetCart handles GET /api/cart. A missing or unreadable cookie is an empty
// cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.cookies.Load(r).Summary(), h.logger)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddCartItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	updated, err := h.service.AddItem(r.Context(), h.cookies.Load(r), req)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.save(w, r, updated)
}

// RemoveItem handles DELETE /api/cart/items
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveCartItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	updated, err := h.service.RemoveItem(h.cookies.Load(r), req)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.save(w, r, updated)
}

func (h *CartHandler) save(w http.ResponseWriter, r *http.Request, c models.Cart) {
	if err := h.cookies.Save(w, c); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, c.Summary(), h.logger)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ivv-intern/storefront/internal/middleware"
	"github.com/ivv-intern/storefront/internal/service"
)

// AccountHandler lists orders for customers and administrators.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// MyOrders handles GET /api/account/orders
func (h *AccountHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	orders, err := h.accounts.Orders(r.Context(), user.ID)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.logger)
}

// AllOrders handles GET /api/admin/orders
func (h *AccountHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.accounts.AllOrders(r.Context())
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, orders, h.logger)
}

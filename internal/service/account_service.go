package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/session"
)

// AccountService serves the logged-in user's own data and the admin order
// overview.
type AccountService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	sessions session.Store
	logger   *slog.Logger
}

func NewAccountService(users repository.UserRepository, orders repository.OrderRepository, sessions session.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		users:    users,
		orders:   orders,
		sessions: sessions,
		logger:   logger,
	}
}

// Orders returns the user's orders, newest first.
func (s *AccountService) Orders(ctx context.Context, userID uuid.UUID) ([]models.OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list orders")
	}
	return views(orders), nil
}

// AllOrders returns every order in the shop, newest first.
func (s *AccountService) AllOrders(ctx context.Context) ([]models.OrderView, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list orders")
	}
	return views(orders), nil
}

// DeleteAccount removes the user with their orders and ends all their
// sessions.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	err := s.users.Delete(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("user not found")
	}
	if err != nil {
		return apperror.Internal(err, "failed to delete user")
	}

	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		// the user is gone, leftover sessions fail to authenticate
		s.logger.Warn("failed to delete sessions of removed user", "user_id", userID, "error", err)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func views(orders []models.Order) []models.OrderView {
	out := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.View())
	}
	return out
}

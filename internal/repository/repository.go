// Package repository persists products, users and orders. Every repository has
// an in-memory implementation for development and tests and a Postgres
// implementation backed by pgx.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProduct     = errors.New("product already exists")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrOpenOrderExists      = errors.New("user already has an open order")
	ErrDuplicateOrderNumber = errors.New("order number already in use")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
}

// OrderRepository stores orders. CreateOpenOrder must check and insert
// atomically so a user never ends up with two OPEN orders.
type OrderRepository interface {
	CreateOpenOrder(ctx context.Context, order *models.Order) error
	GetOpenOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}

// UserRepository stores registered users. Deleting a user deletes their orders.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

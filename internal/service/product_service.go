package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
)

// ProductService handles business logic for products
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns all available products
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list products")
	}
	return products, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("product %q not found", id))
	}
	if err != nil {
		return nil, apperror.Internal(err, "failed to load product")
	}
	return product, nil
}

// CreateProduct validates req and stores it as a new catalog entry.
func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		IsFeatured:    req.IsFeatured,
		Stock:         req.Stock,
		ImageURLs:     req.ImageURLs,
		Sizes:         req.Sizes,
		ColorVariants: req.ColorVariants,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperror.Internal(err, "failed to create product")
	}

	s.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func validateProduct(req models.CreateProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.InvalidArgument("product name is required")
	}
	if req.Price.IsNegative() || !req.Price.Equal(req.Price.Round(2)) {
		return apperror.InvalidArgument("price must be a non-negative amount with at most two decimal places")
	}
	if req.Stock < 0 {
		return apperror.InvalidArgument("stock must not be negative")
	}

	sizes := make(map[string]struct{}, len(req.Sizes))
	for _, size := range req.Sizes {
		if size == "" {
			return apperror.InvalidArgument("sizes must not be empty")
		}
		if _, dup := sizes[size]; dup {
			return apperror.InvalidArgument(fmt.Sprintf("size %q listed twice", size))
		}
		sizes[size] = struct{}{}
	}

	colors := make(map[string]struct{}, len(req.ColorVariants))
	for _, v := range req.ColorVariants {
		if v.Name == "" {
			return apperror.InvalidArgument("color variants need a name")
		}
		if _, dup := colors[v.Name]; dup {
			return apperror.InvalidArgument(fmt.Sprintf("color variant %q listed twice", v.Name))
		}
		colors[v.Name] = struct{}{}
	}
	return nil
}

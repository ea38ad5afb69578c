package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
)

// CartService applies cart changes against the catalog. The cart itself lives
// in the client's cookie; the service only computes the new value.
type CartService struct {
	products repository.ProductRepository
}

func NewCartService(products repository.ProductRepository) *CartService {
	return &CartService{products: products}
}

// AddItem adds req to c. Name, price and image are taken from the catalog.
func (s *CartService) AddItem(ctx context.Context, c models.Cart, req models.AddCartItemRequest) (models.Cart, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return c, apperror.InvalidArgument("quantity must be at least 1")
	}
	if req.ProductID == "" {
		return c, apperror.InvalidArgument("product id is required")
	}

	product, err := lookupVariant(ctx, s.products, req.ProductID, req.Size, req.ColorVariant)
	if err != nil {
		return c, err
	}

	line := models.CartLine{
		ProductID:    product.ID,
		ProductName:  product.Name,
		UnitPrice:    product.Price,
		Size:         req.Size,
		ColorVariant: req.ColorVariant,
		ImageURL:     product.ImageFor(req.ColorVariant),
	}
	return c.AddLine(line, req.Quantity)
}

// RemoveItem drops the line named by req.
func (s *CartService) RemoveItem(c models.Cart, req models.RemoveCartItemRequest) (models.Cart, error) {
	if req.ProductID == "" {
		return c, apperror.InvalidArgument("product id is required")
	}
	return c.RemoveLine(req.Key()), nil
}

// lookupVariant loads a product and checks that it is sold in the given size
// and colour.
func lookupVariant(ctx context.Context, products repository.ProductRepository, id, size, color string) (*models.Product, error) {
	product, err := products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("product %q not found", id))
	}
	if err != nil {
		return nil, apperror.Internal(err, "failed to load product")
	}
	if !product.HasSize(size) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("size %q is not available for %s", size, product.Name))
	}
	if !product.HasColor(color) {
		return nil, apperror.InvalidArgument(fmt.Sprintf("color %q is not available for %s", color, product.Name))
	}
	return product, nil
}

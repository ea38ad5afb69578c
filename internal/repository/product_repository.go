package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/ivv-intern/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	order    []string
	products map[string]models.Product
}

// NewInMemoryProductRepository creates a new in-memory product repository with
// the storefront's seed catalog.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	r := &InMemoryProductRepository{products: make(map[string]models.Product)}
	for _, p := range SeedProducts() {
		r.order = append(r.order, p.ID)
		r.products[p.ID] = p
	}
	return r
}

// GetAll returns all products in insertion order
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, cloneProduct(r.products[id]))
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	product = cloneProduct(product)
	return &product, nil
}

// Create adds a product. The ID must be unique.
func (r *InMemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return ErrDuplicateProduct
	}
	r.order = append(r.order, product.ID)
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func cloneProduct(p models.Product) models.Product {
	p.ImageURLs = slices.Clone(p.ImageURLs)
	p.Sizes = slices.Clone(p.Sizes)
	p.ColorVariants = slices.Clone(p.ColorVariants)
	return p
}

// SeedProducts is the catalog a fresh store starts with. The Postgres
// migrations insert the same rows.
func SeedProducts() []models.Product {
	apparelSizes := []string{"S", "M", "L", "XL"}

	return []models.Product{
		{
			ID:          "club-shirt",
			Name:        "Club Shirt",
			Description: "Cotton shirt with the club crest on the chest.",
			Price:       decimal.RequireFromString("19.99"),
			Category:    "Shirts",
			IsFeatured:  true,
			Stock:       120,
			ImageURLs:   []string{"https://placehold.co/400x400?text=Club+Shirt"},
			Sizes:       apparelSizes,
			ColorVariants: []models.ColorVariant{
				{Name: "black", Hex: "#000000", ImageURL: "https://placehold.co/400x400/000000/ffffff?text=Club+Shirt"},
				{Name: "white", Hex: "#ffffff", ImageURL: "https://placehold.co/400x400/ffffff/000000?text=Club+Shirt"},
			},
		},
		{
			ID:          "club-hoodie",
			Name:        "Club Hoodie",
			Description: "Heavy hoodie with embroidered logo.",
			Price:       decimal.RequireFromString("45.00"),
			Category:    "Hoodies",
			IsFeatured:  true,
			Stock:       60,
			ImageURLs:   []string{"https://placehold.co/400x400?text=Club+Hoodie"},
			Sizes:       apparelSizes,
			ColorVariants: []models.ColorVariant{
				{Name: "navy", Hex: "#1f2a44", ImageURL: "https://placehold.co/400x400/1f2a44/ffffff?text=Club+Hoodie"},
			},
		},
		{
			ID:          "club-cap",
			Name:        "Club Cap",
			Description: "Adjustable baseball cap.",
			Price:       decimal.RequireFromString("14.50"),
			Category:    "Accessories",
			Stock:       80,
			ImageURLs:   []string{"https://placehold.co/400x400?text=Club+Cap"},
			ColorVariants: []models.ColorVariant{
				{Name: "black", Hex: "#000000", ImageURL: "https://placehold.co/400x400/000000/ffffff?text=Club+Cap"},
				{Name: "red", Hex: "#c0392b", ImageURL: "https://placehold.co/400x400/c0392b/ffffff?text=Club+Cap"},
			},
		},
		{
			ID:          "club-mug",
			Name:        "Club Mug",
			Description: "Ceramic mug, 330 ml.",
			Price:       decimal.RequireFromString("9.90"),
			Category:    "Accessories",
			Stock:       200,
			ImageURLs:   []string{"https://placehold.co/400x400?text=Club+Mug"},
		},
		{
			ID:          "club-scarf",
			Name:        "Club Scarf",
			Description: "Knitted scarf in club colours.",
			Price:       decimal.RequireFromString("24.95"),
			Category:    "Accessories",
			Stock:       40,
			ImageURLs:   []string{"https://placehold.co/400x400?text=Club+Scarf"},
		},
	}
}

package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ColorVariant is one colour a product is sold in.
type ColorVariant struct {
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	ImageURL string `json:"imageURL"`
}

// Product represents an item of the storefront catalog
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	IsFeatured    bool            `json:"isFeatured"`
	Stock         int             `json:"stock"`
	ImageURLs     []string        `json:"imageURLs"`
	Sizes         []string        `json:"size"`
	ColorVariants []ColorVariant  `json:"colorVariant"`
}

// HasSize reports whether size is offered. Products without sizes accept only "".
func (p Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return size == ""
	}
	return slices.Contains(p.Sizes, size)
}

// HasColor reports whether the colour variant is offered. Products without
// variants accept only "".
func (p Product) HasColor(name string) bool {
	if len(p.ColorVariants) == 0 {
		return name == ""
	}
	return slices.ContainsFunc(p.ColorVariants, func(v ColorVariant) bool {
		return v.Name == name
	})
}

// ImageFor returns the image of the colour variant, or the first product image.
func (p Product) ImageFor(color string) string {
	for _, v := range p.ColorVariants {
		if v.Name == color && v.ImageURL != "" {
			return v.ImageURL
		}
	}
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	return ""
}

// CreateProductRequest is the admin payload for adding a product
type CreateProductRequest struct {
	Name          string          `json:"name"`
	ImageURLs     []string        `json:"imageURLs,omitempty"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	IsFeatured    bool            `json:"isFeatured"`
	Category      string          `json:"category"`
	Stock         int             `json:"stock"`
	Sizes         []string        `json:"size"`
	ColorVariants []ColorVariant  `json:"colorVariant"`
}

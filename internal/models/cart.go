package models

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/shopspring/decimal"
)

// MaxCartLines bounds the number of distinct lines so the cart cookie stays small.
const MaxCartLines = 100

// MaxLineQuantity bounds the quantity of a single line.
const MaxLineQuantity = 999

// LineKey identifies a cart line. Two lines with the same key are merged.
type LineKey struct {
	ProductID    string
	Size         string
	ColorVariant string
}

// CartLine is one product/size/colour combination in the cart.
// JSON names match the cart cookie format.
type CartLine struct {
	ProductID    string          `json:"id"`
	ProductName  string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"price"`
	Size         string          `json:"size"`
	ColorVariant string          `json:"colorVariant"`
	Quantity     int             `json:"orderQuantity"`
	ImageURL     string          `json:"imageURL"`
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, ColorVariant: l.ColorVariant}
}

// MarshalJSON writes the price as a JSON number, the type the cookie format
// uses.
func (l CartLine) MarshalJSON() ([]byte, error) {
	type plain CartLine
	return json.Marshal(struct {
		plain
		UnitPrice json.Number `json:"price"`
	}{plain: plain(l), UnitPrice: json.Number(l.UnitPrice.String())})
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate checks a line as it appears in a stored cart.
func (l CartLine) Validate() error {
	if l.ProductID == "" {
		return apperror.InvalidArgument("cart line has no product id")
	}
	if err := validateQuantity(l.Quantity); err != nil {
		return err
	}
	if err := validatePrice(l.UnitPrice); err != nil {
		return err
	}
	return nil
}

func validateQuantity(q int) error {
	if q < 1 {
		return apperror.InvalidArgument("quantity must be at least 1")
	}
	if q > MaxLineQuantity {
		return apperror.InvalidArgument(fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
	}
	return nil
}

func validatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return apperror.InvalidArgument("price must not be negative")
	}
	if !p.Equal(p.Round(2)) {
		return apperror.InvalidArgument("price must have at most two decimal places")
	}
	return nil
}

// Cart is the ordered list of lines held in the client's cart token.
// No two lines share a LineKey.
type Cart []CartLine

// AddLine adds quantity units of line. An existing line with the same key has
// its quantity incremented; otherwise a new line is appended. The receiver is
// never modified.
func (c Cart) AddLine(line CartLine, quantity int) (Cart, error) {
	if err := validateQuantity(quantity); err != nil {
		return c, err
	}
	if line.ProductID == "" {
		return c, apperror.InvalidArgument("product id is required")
	}
	if err := validatePrice(line.UnitPrice); err != nil {
		return c, err
	}

	out := slices.Clone(c)
	if i := out.indexOf(line.Key()); i >= 0 {
		if out[i].Quantity > MaxLineQuantity-quantity {
			return c, apperror.InvalidArgument(fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
		}
		out[i].Quantity += quantity
		return out, nil
	}

	if len(out) >= MaxCartLines {
		return c, apperror.InvalidArgument(fmt.Sprintf("cart cannot hold more than %d lines", MaxCartLines))
	}

	line.Quantity = quantity
	return append(out, line), nil
}

// RemoveLine drops the line with the given key regardless of its quantity.
// Removing an absent key is a no-op.
func (c Cart) RemoveLine(key LineKey) Cart {
	i := c.indexOf(key)
	if i < 0 {
		return c
	}
	return slices.Delete(slices.Clone(c), i, i+1)
}

func (c Cart) indexOf(key LineKey) int {
	return slices.IndexFunc(c, func(l CartLine) bool { return l.Key() == key })
}

// TotalItems is the sum of all quantities.
func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c {
		total += l.Quantity
	}
	return total
}

// TotalPrice is Σ UnitPrice × Quantity rounded to cents.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// Validate checks every line and the key uniqueness invariant.
func (c Cart) Validate() error {
	if len(c) > MaxCartLines {
		return apperror.InvalidArgument(fmt.Sprintf("cart cannot hold more than %d lines", MaxCartLines))
	}
	seen := make(map[LineKey]struct{}, len(c))
	for _, l := range c {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, dup := seen[l.Key()]; dup {
			return apperror.InvalidArgument("cart contains duplicate lines")
		}
		seen[l.Key()] = struct{}{}
	}
	return nil
}

// Equal compares two carts line by line, prices by value.
func (c Cart) Equal(other Cart) bool {
	return slices.EqualFunc(c, other, func(a, b CartLine) bool {
		return a.ProductID == b.ProductID &&
			a.ProductName == b.ProductName &&
			a.UnitPrice.Equal(b.UnitPrice) &&
			a.Size == b.Size &&
			a.ColorVariant == b.ColorVariant &&
			a.Quantity == b.Quantity &&
			a.ImageURL == b.ImageURL
	})
}

// CartSummary is the cart as returned by the API.
type CartSummary struct {
	Lines      Cart            `json:"lines"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (c Cart) Summary() CartSummary {
	lines := c
	if lines == nil {
		lines = Cart{}
	}
	return CartSummary{Lines: lines, TotalItems: c.TotalItems(), TotalPrice: c.TotalPrice()}
}

// AddCartItemRequest adds a product variant to the cart. A missing quantity
// means one unit.
type AddCartItemRequest struct {
	ProductID    string `json:"id"`
	Size         string `json:"size"`
	ColorVariant string `json:"colorVariant"`
	Quantity     int    `json:"orderQuantity"`
}

// RemoveCartItemRequest names the line to drop from the cart.
type RemoveCartItemRequest struct {
	ProductID    string `json:"id"`
	Size         string `json:"size"`
	ColorVariant string `json:"colorVariant"`
}

func (r RemoveCartItemRequest) Key() LineKey {
	return LineKey{ProductID: r.ProductID, Size: r.Size, ColorVariant: r.ColorVariant}
}

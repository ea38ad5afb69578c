package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderLine is a snapshot of a cart line taken at checkout. Later catalog
// changes do not affect it.
type OrderLine struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	Size         string          `json:"size"`
	ColorVariant string          `json:"colorVariant"`
	Quantity     int             `json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a placed order
type Order struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"userId"`
	OrderNumber      string      `json:"orderNumber"`
	PaymentReference string      `json:"paymentReference"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
	Lines            []OrderLine `json:"lines"`
}

// Total is Σ Price × Quantity over all lines, rounded to cents.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// OrderView is the JSON shape of an order including its total.
type OrderView struct {
	Order
	Total decimal.Decimal `json:"total"`
}

func (o Order) View() OrderView {
	return OrderView{Order: o, Total: o.Total()}
}

// CheckoutProduct is the product part of a checkout item.
type CheckoutProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Size         string          `json:"size"`
	ColorVariant string          `json:"colorVariant"`
}

// CheckoutItem is one entry of a checkout request
type CheckoutItem struct {
	Product       CheckoutProduct `json:"product"`
	OrderQuantity int             `json:"order_quantity"`
}

// CheckoutRequest represents an incoming checkout. An empty product list means
// the cart cookie is checked out instead.
type CheckoutRequest struct {
	Products []CheckoutItem `json:"products"`
}

// Cart folds the request items into a cart, merging repeated keys.
func (r CheckoutRequest) Cart() (Cart, error) {
	var c Cart
	for _, item := range r.Products {
		line := CartLine{
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			UnitPrice:    item.Product.Price,
			Size:         item.Product.Size,
			ColorVariant: item.Product.ColorVariant,
		}
		var err error
		if c, err = c.AddLine(line, item.OrderQuantity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CheckoutResponse is returned after a successful checkout.
// CheckoutLink is the payment QR code as a data URI.
type CheckoutResponse struct {
	Message      string    `json:"message"`
	Code         int       `json:"code"`
	CheckoutLink string    `json:"checkoutLink"`
	Order        OrderView `json:"order"`
}

// Package events publishes domain events about orders.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/shopspring/decimal"
)

const TypeOrderCreated = "order.created"

// OrderCreated is emitted after a checkout persisted a new order.
type OrderCreated struct {
	Type             string             `json:"type"`
	OrderID          uuid.UUID          `json:"orderId"`
	UserID           uuid.UUID          `json:"userId"`
	OrderNumber      string             `json:"orderNumber"`
	PaymentReference string             `json:"paymentReference"`
	Total            decimal.Decimal    `json:"total"`
	Lines            []models.OrderLine `json:"lines"`
	CreatedAt        time.Time          `json:"createdAt"`
}

func NewOrderCreated(o *models.Order) OrderCreated {
	return OrderCreated{
		Type:             TypeOrderCreated,
		OrderID:          o.ID,
		UserID:           o.UserID,
		OrderNumber:      o.OrderNumber,
		PaymentReference: o.PaymentReference,
		Total:            o.Total(),
		Lines:            o.Lines,
		CreatedAt:        o.CreatedAt,
	}
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }

func (NopPublisher) Close() error { return nil }

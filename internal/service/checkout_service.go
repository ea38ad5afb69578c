package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/events"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/payment"
	"github.com/ivv-intern/storefront/internal/repository"
)

// orderNumberAttempts bounds retries when a generated order number collides.
const orderNumberAttempts = 3

// PaymentConfig describes where checkout payments go.
type PaymentConfig struct {
	Namespace string
	Recipient payment.Recipient
}

// CheckoutResult is a persisted order together with its payment code.
type CheckoutResult struct {
	Order        *models.Order
	Payload      string
	CheckoutLink string
}

// CheckoutService turns a cart into an OPEN order with a SEPA payment code.
type CheckoutService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	renderer  *payment.Renderer
	payment   PaymentConfig
	publisher events.Publisher
	logger    *slog.Logger

	now            func() time.Time
	newOrderNumber func() (string, error)
}

// NewCheckoutService creates a checkout service. products may be nil, in
// which case cart prices are used as they are.
func NewCheckoutService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	renderer *payment.Renderer,
	cfg PaymentConfig,
	publisher events.Publisher,
	logger *slog.Logger,
) *CheckoutService {
	if cfg.Namespace == "" {
		cfg.Namespace = payment.DefaultNamespace
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CheckoutService{
		orders:         orders,
		products:       products,
		renderer:       renderer,
		payment:        cfg,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
		newOrderNumber: payment.NewOrderNumber,
	}
}

// Checkout places an order for user from c. Nothing is persisted unless the
// payment code could be rendered, and a user with an OPEN order gets a
// Conflict.
func (s *CheckoutService) Checkout(ctx context.Context, user *models.User, c models.Cart) (*CheckoutResult, error) {
	if user == nil {
		return nil, apperror.Unauthenticated("login required")
	}
	if len(c) == 0 {
		return nil, apperror.InvalidState("empty cart")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.orders.GetOpenOrder(ctx, user.ID); err == nil {
		return nil, apperror.Conflict("an open order already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err, "failed to check open orders")
	}

	lines, err := s.snapshotLines(ctx, c)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		result, err := s.placeOrder(ctx, user, lines)
		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < orderNumberAttempts {
			s.logger.Warn("order number collision, retrying", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, result.Order)
		return result, nil
	}
}

func (s *CheckoutService) placeOrder(ctx context.Context, user *models.User, lines []models.OrderLine) (*CheckoutResult, error) {
	orderNumber, err := s.newOrderNumber()
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate order number")
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:               uuid.New(),
		UserID:           user.ID,
		OrderNumber:      orderNumber,
		PaymentReference: payment.BuildReference(s.payment.Namespace, user.Name, user.Surname, orderNumber),
		Status:           models.OrderStatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
		Lines:            lines,
	}

	code, err := s.renderer.Render(s.payment.Recipient.Transfer(order.Total(), order.PaymentReference))
	if err != nil {
		return nil, err
	}

	err = s.orders.CreateOpenOrder(ctx, order)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrOpenOrderExists):
		return nil, apperror.Conflict("an open order already exists")
	case errors.Is(err, repository.ErrDuplicateOrderNumber):
		return nil, apperror.Internal(err, "failed to allocate an order number")
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperror.NotFound("user not found")
	default:
		return nil, apperror.Internal(err, "failed to save order")
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", user.ID,
		"total", order.Total().StringFixed(2),
	)

	return &CheckoutResult{
		Order:        order,
		Payload:      code.Payload,
		CheckoutLink: code.DataURI(),
	}, nil
}

// snapshotLines copies the cart into order lines. With a catalog wired, the
// catalog's current name and price win over what the client sent.
func (s *CheckoutService) snapshotLines(ctx context.Context, c models.Cart) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(c))
	for _, l := range c {
		line := models.OrderLine{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Price:        l.UnitPrice,
			Size:         l.Size,
			ColorVariant: l.ColorVariant,
			Quantity:     l.Quantity,
		}
		if s.products != nil {
			product, err := lookupVariant(ctx, s.products, l.ProductID, l.Size, l.ColorVariant)
			if err != nil {
				return nil, err
			}
			line.ProductName = product.Name
			line.Price = product.Price
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *CheckoutService) publish(ctx context.Context, order *models.Order) {
	if err := s.publisher.PublishOrderCreated(ctx, events.NewOrderCreated(order)); err != nil {
		s.logger.Warn("failed to publish order event",
			"order_id", order.ID,
			"error", err,
		)
	}
}

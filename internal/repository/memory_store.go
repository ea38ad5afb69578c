package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
)

// MemoryStore keeps users and orders in process memory. A single mutex
// guards both so that deleting a user and its orders is atomic, and so that
// the open-order check and insert happen together.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]models.User
	emails       map[string]uuid.UUID
	orders       map[uuid.UUID]models.Order
	orderNumbers map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]models.User),
		emails:       make(map[string]uuid.UUID),
		orders:       make(map[uuid.UUID]models.Order),
		orderNumbers: make(map[string]uuid.UUID),
	}
}

var (
	_ UserRepository  = (*MemoryStore)(nil)
	_ OrderRepository = (*MemoryOrders)(nil)
)

// Orders returns the order repository view of the store.
func (m *MemoryStore) Orders() *MemoryOrders {
	return &MemoryOrders{store: m}
}

// UserRepository implementation

func (m *MemoryStore) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := m.emails[email]; exists {
		return ErrDuplicateEmail
	}
	m.users[user.ID] = *user
	m.emails[email] = user.ID
	return nil
}

func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	for orderID, o := range m.orders {
		if o.UserID == id {
			delete(m.orderNumbers, o.OrderNumber)
			delete(m.orders, orderID)
		}
	}
	delete(m.emails, strings.ToLower(u.Email))
	delete(m.users, id)
	return nil
}

// MemoryOrders implements OrderRepository on top of a MemoryStore.
type MemoryOrders struct {
	store *MemoryStore
}

func (o *MemoryOrders) CreateOpenOrder(ctx context.Context, order *models.Order) error {
	m := o.store
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[order.UserID]; !ok {
		return ErrNotFound
	}
	if _, taken := m.orderNumbers[order.OrderNumber]; taken {
		return ErrDuplicateOrderNumber
	}
	if order.Status == models.OrderStatusOpen {
		for _, existing := range m.orders {
			if existing.UserID == order.UserID && existing.Status == models.OrderStatusOpen {
				return ErrOpenOrderExists
			}
		}
	}

	m.orders[order.ID] = cloneOrder(*order)
	m.orderNumbers[order.OrderNumber] = order.ID
	return nil
}

func (o *MemoryOrders) GetOpenOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	m := o.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, existing := range m.orders {
		if existing.UserID == userID && existing.Status == models.OrderStatusOpen {
			cp := cloneOrder(existing)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (o *MemoryOrders) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return o.list(func(order models.Order) bool { return order.UserID == userID }), nil
}

func (o *MemoryOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return o.list(func(models.Order) bool { return true }), nil
}

// list returns matching orders, newest first.
func (o *MemoryOrders) list(keep func(models.Order) bool) []models.Order {
	m := o.store
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, order := range m.orders {
		if keep(order) {
			out = append(out, cloneOrder(order))
		}
	}
	slices.SortFunc(out, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.OrderNumber, b.OrderNumber)
	})
	return out
}

func cloneOrder(o models.Order) models.Order {
	o.Lines = slices.Clone(o.Lines)
	return o
}

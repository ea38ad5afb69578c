package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(email string) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		Name:         "Jane",
		Surname:      "Doe",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

func newTestOrder(userID uuid.UUID, number string, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:               uuid.New(),
		UserID:           userID,
		OrderNumber:      number,
		PaymentReference: "ivv-intern-JaneDoe-" + number,
		Status:           models.OrderStatusOpen,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
		Lines: []models.OrderLine{
			{ProductID: "club-shirt", ProductName: "Club Shirt", Price: decimal.RequireFromString("19.99"), Size: "M", ColorVariant: "black", Quantity: 2},
		},
	}
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := newTestUser("jane@example.com")

	require.NoError(t, store.Create(ctx, user))
	assert.ErrorIs(t, store.Create(ctx, newTestUser("JANE@example.com")), ErrDuplicateEmail)

	byEmail, err := store.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", byID.Name)

	_, err = store.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteUserRemovesOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	user := newTestUser("jane@example.com")
	require.NoError(t, store.Create(ctx, user))
	require.NoError(t, orders.CreateOpenOrder(ctx, newTestOrder(user.ID, "aaaaaaaaaaaa", time.Now())))

	require.NoError(t, store.Delete(ctx, user.ID))

	_, err := store.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, store.Delete(ctx, user.ID), ErrNotFound)

	// the email is free again
	assert.NoError(t, store.Create(ctx, newTestUser("jane@example.com")))
}

func TestMemoryOrders_OneOpenOrderPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	user := newTestUser("jane@example.com")
	require.NoError(t, store.Create(ctx, user))

	first := newTestOrder(user.ID, "aaaaaaaaaaaa", time.Now())
	require.NoError(t, orders.CreateOpenOrder(ctx, first))

	err := orders.CreateOpenOrder(ctx, newTestOrder(user.ID, "bbbbbbbbbbbb", time.Now()))
	assert.ErrorIs(t, err, ErrOpenOrderExists)

	open, err := orders.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, open.ID)
	assert.Equal(t, first.Lines, open.Lines)
}

func TestMemoryOrders_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	jane := newTestUser("jane@example.com")
	john := newTestUser("john@example.com")
	require.NoError(t, store.Create(ctx, jane))
	require.NoError(t, store.Create(ctx, john))
	require.NoError(t, orders.CreateOpenOrder(ctx, newTestOrder(jane.ID, "aaaaaaaaaaaa", time.Now())))

	err := orders.CreateOpenOrder(ctx, newTestOrder(john.ID, "aaaaaaaaaaaa", time.Now()))
	assert.ErrorIs(t, err, ErrDuplicateOrderNumber)

	err = orders.CreateOpenOrder(ctx, newTestOrder(uuid.New(), "cccccccccccc", time.Now()))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = orders.GetOpenOrder(ctx, john.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrders_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	user := newTestUser("jane@example.com")
	require.NoError(t, store.Create(ctx, user))

	const attempts = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			number := string(rune('a'+i)) + "00000000000"
			switch err := orders.CreateOpenOrder(ctx, newTestOrder(user.ID, number, time.Now())); err {
			case nil:
				succeeded.Add(1)
			case ErrOpenOrderExists:
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), conflicts.Load())
}

func TestMemoryOrders_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	jane := newTestUser("jane@example.com")
	john := newTestUser("john@example.com")
	require.NoError(t, store.Create(ctx, jane))
	require.NoError(t, store.Create(ctx, john))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := newTestOrder(jane.ID, "aaaaaaaaaaaa", base)
	older.Status = models.OrderStatusCompleted
	newer := newTestOrder(jane.ID, "bbbbbbbbbbbb", base.Add(time.Hour))
	other := newTestOrder(john.ID, "cccccccccccc", base.Add(2*time.Hour))
	for _, o := range []*models.Order{older, newer, other} {
		require.NoError(t, orders.CreateOpenOrder(ctx, o))
	}

	mine, err := orders.ListByUser(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)
}

func TestMemoryOrders_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := store.Orders()
	user := newTestUser("jane@example.com")
	require.NoError(t, store.Create(ctx, user))
	require.NoError(t, orders.CreateOpenOrder(ctx, newTestOrder(user.ID, "aaaaaaaaaaaa", time.Now())))

	open, err := orders.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	open.Lines[0].Quantity = 99

	again, err := orders.GetOpenOrder(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Lines[0].Quantity)
}

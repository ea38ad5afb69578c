package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/session"
	"github.com/ivv-intern/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	sessions := session.NewMemoryStore(time.Hour)
	svc := NewAccountService(store, store.Orders(), sessions, logger.Discard())

	jane := &models.User{ID: uuid.New(), Email: "jane@example.com", Name: "Jane", Surname: "Doe"}
	john := &models.User{ID: uuid.New(), Email: "john@example.com", Name: "John", Surname: "Roe"}
	require.NoError(t, store.Create(ctx, jane))
	require.NoError(t, store.Create(ctx, john))

	for i, u := range []*models.User{jane, john} {
		require.NoError(t, store.Orders().CreateOpenOrder(ctx, &models.Order{
			ID:          uuid.New(),
			UserID:      u.ID,
			OrderNumber: []string{"aaaaaaaaaaaa", "bbbbbbbbbbbb"}[i],
			Status:      models.OrderStatusOpen,
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Minute),
			Lines: []models.OrderLine{
				{ProductID: "club-shirt", Price: decimal.RequireFromString("19.99"), Quantity: 2},
			},
		}))
	}

	mine, err := svc.Orders(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Total.Equal(decimal.RequireFromString("39.98")))

	all, err := svc.AllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sess, err := sessions.Create(ctx, jane.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, jane.ID))

	_, err = sessions.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	mine, err = svc.Orders(ctx, jane.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	err = svc.DeleteAccount(ctx, jane.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

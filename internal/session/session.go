// Package session stores login sessions referenced by the sessionId cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/models"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 24 * time.Hour

var ErrNotFound = errors.New("session not found")

// Store creates and resolves sessions. Get returns ErrNotFound for unknown and
// expired sessions alike.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

func newSession(userID uuid.UUID, now time.Time, ttl time.Duration) *models.Session {
	return &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
	}
}

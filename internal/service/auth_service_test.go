package service

import (
	"context"
	"testing"
	"time"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/session"
	"github.com/ivv-intern/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (*AuthService, *repository.MemoryStore, *session.MemoryStore) {
	users := repository.NewMemoryStore()
	sessions := session.NewMemoryStore(time.Hour)
	svc := NewAuthService(users, sessions, []string{" Admin@Example.com "}, logger.Discard())
	svc.bcryptCost = bcrypt.MinCost
	return svc, users, sessions
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    "Jane@Example.com",
		Password: "correct horse",
		Name:     "Jane",
		Surname:  "Doe",
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.Equal(t, user.ID, sess.UserID)

	_, _, err = svc.Register(ctx, validRegistration())
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	svc, _, _ := newTestAuthService()
	req := validRegistration()
	req.Email = "admin@example.com"

	user, _, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*models.RegisterRequest)
	}{
		{name: "bad email", modify: func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{name: "empty email", modify: func(r *models.RegisterRequest) { r.Email = "" }},
		{name: "short password", modify: func(r *models.RegisterRequest) { r.Password = "short" }},
		{name: "missing name", modify: func(r *models.RegisterRequest) { r.Name = " " }},
		{name: "missing surname", modify: func(r *models.RegisterRequest) { r.Surname = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestAuthService()
			req := validRegistration()
			tt.modify(&req)

			_, _, err := svc.Register(context.Background(), req)
			assert.True(t, apperror.IsKind(err, apperror.KindInvalidArgument), "got %v", err)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, sess, err := svc.Login(ctx, models.LoginRequest{Email: "JANE@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, user.ID, sess.UserID)

	_, _, err = svc.Login(ctx, models.LoginRequest{Email: "jane@example.com", Password: "wrong password"})
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))

	_, _, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()
	registered, sess, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, got, err := svc.Authenticate(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, sess.ID, got.ID)

	_, _, err = svc.Authenticate(ctx, "")
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))

	require.NoError(t, svc.Logout(ctx, sess.ID))
	_, _, err = svc.Authenticate(ctx, sess.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))

	err = svc.Logout(ctx, sess.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// a session outliving its user no longer authenticates
	_, sess, err = svc.Login(ctx, models.LoginRequest{Email: "jane@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, registered.ID))
	_, _, err = svc.Authenticate(ctx, sess.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthenticated))
}

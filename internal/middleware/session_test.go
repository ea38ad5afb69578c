package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	sessions map[string]*models.User
	err      error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, id string) (*models.User, *models.Session, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	user, ok := f.sessions[id]
	if !ok {
		return nil, nil, apperror.Unauthenticated("session expired")
	}
	return user, &models.Session{ID: id, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(user.Email))
}

func TestSession(t *testing.T) {
	jane := &models.User{ID: uuid.New(), Email: "jane@example.com", Role: models.RoleUser}
	auth := &fakeAuthenticator{sessions: map[string]*models.User{"valid": jane}}
	handler := Session(auth, logger.Discard())(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{name: "no cookie", want: "anonymous"},
		{name: "valid session", cookie: "valid", want: "jane@example.com"},
		{name: "unknown session", cookie: "expired", want: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestSession_StoreFailureContinuesAnonymously(t *testing.T) {
	auth := &fakeAuthenticator{err: errors.New("redis down")}
	handler := Session(auth, logger.Discard())(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRequireUserAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	tests := []struct {
		name       string
		middleware func(http.Handler) http.Handler
		user       *models.User
		wantStatus int
		wantCode   string
	}{
		{name: "user route anonymous", middleware: RequireUser, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "user route logged in", middleware: RequireUser, user: user, wantStatus: http.StatusOK},
		{name: "admin route anonymous", middleware: RequireAdmin, wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHENTICATED"},
		{name: "admin route as user", middleware: RequireAdmin, user: user, wantStatus: http.StatusForbidden, wantCode: "PERMISSION_DENIED"},
		{name: "admin route as admin", middleware: RequireAdmin, user: admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user, &models.Session{ID: "s"}))
			}
			w := httptest.NewRecorder()

			tt.middleware(ok).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body["code"])
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "sessionId"

// Authenticator resolves a session ID to the logged-in user.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*models.User, *models.Session, error)
}

type contextKey struct{ name string }

var (
	userKey    = contextKey{"user"}
	sessionKey = contextKey{"session"}
)

// WithUser stores the caller in ctx.
func WithUser(ctx context.Context, user *models.User, sess *models.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionKey, sess)
}

// UserFromContext returns the logged-in user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}

// SessionFromContext returns the caller's session, if any.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*models.Session)
	return sess, ok && sess != nil
}

// Session resolves the session cookie. Requests without a valid session
// continue anonymously.
func Session(auth Authenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, sess, err := auth.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if !apperror.IsKind(err, apperror.KindUnauthenticated) {
					logger.Error("failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user, sess)))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			writeError(w, apperror.Unauthenticated("login required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, apperror.Unauthenticated("login required"))
			return
		}
		if !user.IsAdmin() {
			writeError(w, apperror.PermissionDenied("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, err *apperror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.HTTPStatus(err.Kind))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Message,
		"code":  string(err.Kind),
	})
}

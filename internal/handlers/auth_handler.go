package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ivv-intern/storefront/internal/cart"
	"github.com/ivv-intern/storefront/internal/middleware"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/service"
)

// AuthHandler handles registration, login and the caller's own account.
type AuthHandler struct {
	auth     *service.AuthService
	accounts *service.AccountService
	cookies  *cart.CookieStore
	secure   bool
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, accounts *service.AccountService, cookies *cart.CookieStore, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		accounts: accounts,
		cookies:  cookies,
		secure:   secure,
		logger:   logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	user, sess, err := h.auth.Register(r.Context(), req)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, sess)
	WriteJSON(w, http.StatusCreated, models.AuthResponse{
		Message: "user registered",
		Code:    http.StatusCreated,
		User:    models.AuthUser{ID: user.ID, Email: user.Email},
	}, h.logger)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	user, sess, err := h.auth.Login(r.Context(), req)
	if err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, sess)
	WriteJSON(w, http.StatusOK, models.AuthResponse{
		Message: "logged in",
		Code:    http.StatusOK,
		User:    models.AuthUser{ID: user.ID, Email: user.Email},
	}, h.logger)
}

// Logout handles POST /api/auth/logout. The cookie is cleared even when the
// session was already gone.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var sessionID string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessionID = cookie.Value
	}

	h.clearSessionCookie(w)
	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out", Code: http.StatusOK}, h.logger)
}

// Me handles GET /api/auth/me. Anonymous callers get isUserLoggedIn=false.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	var current models.CurrentUser
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		sess, _ := middleware.SessionFromContext(r.Context())
		current = models.CurrentUser{User: user, Session: sess, IsUserLoggedIn: true}
	}

	WriteJSON(w, http.StatusOK, current, h.logger)
}

// DeleteMe handles DELETE /api/auth/me. The account, its orders and all its
// sessions are removed and the caller's cookies cleared.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	if err := h.accounts.DeleteAccount(r.Context(), user.ID); err != nil {
		WriteAppError(w, r, err, h.logger)
		return
	}

	h.clearSessionCookie(w)
	h.cookies.Clear(w)
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "account deleted", Code: http.StatusOK}, h.logger)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

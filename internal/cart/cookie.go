package cart

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ivv-intern/storefront/internal/models"
)

const CookieName = "cart"

// CookieStore reads and writes the cart cookie of a single request.
type CookieStore struct {
	secure bool
	logger *slog.Logger
}

// NewCookieStore creates a cookie store. secure controls the Secure attribute
// and should only be false for local development over plain HTTP.
func NewCookieStore(secure bool, logger *slog.Logger) *CookieStore {
	return &CookieStore{
		secure: secure,
		logger: logger,
	}
}

// Load returns the cart carried by the request, or an empty cart.
func (s *CookieStore) Load(r *http.Request) models.Cart {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return models.Cart{}
	}

	return Decode(cookie.Value, s.logger)
}

// Save writes c back to the client.
func (s *CookieStore) Save(w http.ResponseWriter, c models.Cart) error {
	token, err := Encode(c)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Clear expires the cart cookie.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

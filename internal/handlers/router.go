package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ivv-intern/storefront/internal/middleware"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Health   *HealthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Auth     *AuthHandler
	Accounts *AccountHandler

	Authenticator  middleware.Authenticator
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP routing tree.
func NewRouter(rt Router, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	if rt.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(rt.RequestTimeout))
	}

	// cookies are the credentials, so wildcard origins are not allowed
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.Health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(rt.Authenticator, logger))

		r.Get("/products", rt.Products.ListProducts)
		r.Get("/products/{productId}", rt.Products.GetProduct)

		r.Get("/cart", rt.Cart.GetCart)
		r.Post("/cart/items", rt.Cart.AddItem)
		r.Delete("/cart/items", rt.Cart.RemoveItem)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.Auth.Register)
			r.Post("/login", rt.Auth.Login)
			r.Post("/logout", rt.Auth.Logout)
			r.Get("/me", rt.Auth.Me)
			r.With(middleware.RequireUser).Delete("/me", rt.Auth.DeleteMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Post("/checkout", rt.Checkout.Checkout)
			r.Get("/account/orders", rt.Accounts.MyOrders)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/orders", rt.Accounts.AllOrders)
			r.Post("/products", rt.Products.CreateProduct)
		})
	})

	return r
}

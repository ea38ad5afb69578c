package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ivv-intern/storefront/internal/cart"
	"github.com/ivv-intern/storefront/internal/events"
	"github.com/ivv-intern/storefront/internal/payment"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/service"
	"github.com/ivv-intern/storefront/internal/session"
	"github.com/ivv-intern/storefront/pkg/logger"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@example.com"

type testEnv struct {
	server   *httptest.Server
	products *repository.InMemoryProductRepository
	store    *repository.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()

	products := repository.NewInMemoryProductRepository()
	store := repository.NewMemoryStore()
	sessions := session.NewMemoryStore(time.Hour)
	cookies := cart.NewCookieStore(false, log)

	paymentCfg := service.PaymentConfig{
		Namespace: payment.DefaultNamespace,
		Recipient: payment.Recipient{
			Name:     "Max Mustermann",
			IBAN:     "DE44500105175407324931",
			BIC:      "INGDDEFFXXX",
			Currency: "EUR",
		},
	}

	productSvc := service.NewProductService(products, log)
	cartSvc := service.NewCartService(products)
	checkoutSvc := service.NewCheckoutService(store.Orders(), products, payment.NewRenderer(64), paymentCfg, events.NopPublisher{}, log)
	authSvc := service.NewAuthService(store, sessions, []string{adminEmail}, log)
	accountSvc := service.NewAccountService(store, store.Orders(), sessions, log)

	router := NewRouter(Router{
		Health:         NewHealthHandler(nil, "test", log),
		Products:       NewProductHandler(productSvc, log),
		Cart:           NewCartHandler(cartSvc, cookies, log),
		Checkout:       NewCheckoutHandler(checkoutSvc, cookies, log),
		Auth:           NewAuthHandler(authSvc, accountSvc, cookies, false, log),
		Accounts:       NewAccountHandler(accountSvc, log),
		Authenticator:  authSvc,
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 10 * time.Second,
	}, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, products: products, store: store}
}

// client returns a browser-like client with its own cookie jar.
func (e *testEnv) client(t *testing.T) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: e.server.URL, http: &http.Client{Jar: jar}}
}

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (c *testClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *testClient) cookie(name string) *http.Cookie {
	req, _ := http.NewRequest(http.MethodGet, c.base+"/", nil)
	for _, cookie := range c.http.Jar.Cookies(req.URL) {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func (c *testClient) register(email string) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "correct horse",
		"name":     "Jane",
		"surname":  "Doe",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

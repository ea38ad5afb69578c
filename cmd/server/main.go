package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivv-intern/storefront/internal/cart"
	"github.com/ivv-intern/storefront/internal/config"
	"github.com/ivv-intern/storefront/internal/events"
	"github.com/ivv-intern/storefront/internal/handlers"
	"github.com/ivv-intern/storefront/internal/payment"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/service"
	"github.com/ivv-intern/storefront/internal/session"
	"github.com/ivv-intern/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// stores groups the repositories selected by DB_DRIVER.
type stores struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	checks   map[string]handlers.HealthCheck
	close    func()
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting storefront api server",
		"version", version,
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"db_driver", cfg.Database.Driver,
		"session_driver", cfg.Session.Driver,
		"log_level", cfg.LogLevel,
	)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	sessions, closeSessions, err := openSessions(ctx, cfg, st.checks)
	if err != nil {
		return err
	}
	defer closeSessions()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.OrderTopic, cfg.Kafka.Brokers...)
		log.Info("publishing order events", "topic", cfg.Kafka.OrderTopic, "brokers", cfg.Kafka.Brokers)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", "error", err)
		}
	}()

	// Initialize services
	productService := service.NewProductService(st.products, log)
	cartService := service.NewCartService(st.products)
	checkoutService := service.NewCheckoutService(
		st.orders,
		st.products,
		payment.NewRenderer(cfg.Payment.QRSize),
		service.PaymentConfig{Namespace: cfg.Payment.Namespace, Recipient: cfg.Payment.Recipient()},
		publisher,
		log,
	)
	authService := service.NewAuthService(st.users, sessions, cfg.Auth.AdminEmails, log)
	accountService := service.NewAccountService(st.users, st.orders, sessions, log)

	// Initialize handlers
	cookies := cart.NewCookieStore(cfg.Session.CookieSecure, log)
	router := handlers.NewRouter(handlers.Router{
		Health:         handlers.NewHealthHandler(st.checks, version, log),
		Products:       handlers.NewProductHandler(productService, log),
		Cart:           handlers.NewCartHandler(cartService, cookies, log),
		Checkout:       handlers.NewCheckoutHandler(checkoutService, cookies, log),
		Auth:           handlers.NewAuthHandler(authService, accountService, cookies, cfg.Session.CookieSecure, log),
		Accounts:       handlers.NewAccountHandler(accountService, log),
		Authenticator:  authService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	checks := make(map[string]handlers.HealthCheck)

	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{
			users:    mem,
			orders:   mem.Orders(),
			products: repository.NewInMemoryProductRepository(),
			checks:   checks,
			close:    func() {},
		}, nil
	}

	if cfg.Database.Migrate {
		log.Info("applying database migrations")
		if err := repository.Migrate(cfg.Database.URL); err != nil {
			return nil, err
		}
	}

	pool, err := repository.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, err
	}
	pg := repository.NewPostgresStore(pool)
	checks["postgres"] = pg.Ping

	return &stores{
		users:    pg,
		orders:   pg.Orders(),
		products: pg.Products(),
		checks:   checks,
		close:    pool.Close,
	}, nil
}

func openSessions(ctx context.Context, cfg *config.Config, checks map[string]handlers.HealthCheck) (session.Store, func(), error) {
	if cfg.Session.Driver == config.DriverMemory {
		return session.NewMemoryStore(cfg.Session.TTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := session.NewRedisStore(client, cfg.Session.TTL)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	checks["redis"] = store.Ping

	return store, func() { _ = client.Close() }, nil
}

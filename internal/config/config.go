package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ivv-intern/storefront/internal/payment"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Every key can be set from the environment; CONFIG_FILE optionally points to
// a .env or YAML file read first.
type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Session  SessionConfig  `mapstructure:",squash"`
	Payment  PaymentConfig  `mapstructure:",squash"`
	Kafka    KafkaConfig    `mapstructure:",squash"`
	Auth     AuthConfig     `mapstructure:",squash"`
	CORS     CORSConfig     `mapstructure:",squash"`
	LogLevel string         `mapstructure:"LOG_LEVEL"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"PORT"`
	Host            string        `mapstructure:"HOST"`
	ReadTimeout     time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// maxNamespaceLength leaves room for the order number and part of the
// customer's name in a payment reference.
const maxNamespaceLength = 64

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type DatabaseConfig struct {
	Driver   string `mapstructure:"DB_DRIVER"`
	URL      string `mapstructure:"DATABASE_URL"`
	Migrate  bool   `mapstructure:"DB_MIGRATE"`
	MaxConns int32  `mapstructure:"DB_MAX_CONNS"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SessionConfig struct {
	Driver       string        `mapstructure:"SESSION_DRIVER"`
	TTL          time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`
}

type PaymentConfig struct {
	Namespace     string `mapstructure:"PAYMENT_NAMESPACE"`
	RecipientName string `mapstructure:"PAYMENT_RECIPIENT_NAME"`
	IBAN          string `mapstructure:"PAYMENT_IBAN"`
	BIC           string `mapstructure:"PAYMENT_BIC"`
	Currency      string `mapstructure:"PAYMENT_CURRENCY"`
	Purpose       string `mapstructure:"PAYMENT_PURPOSE"`
	QRSize        int    `mapstructure:"PAYMENT_QR_SIZE"`
}

// Recipient returns the account payments are sent to.
func (p PaymentConfig) Recipient() payment.Recipient {
	return payment.Recipient{
		Name:     p.RecipientName,
		IBAN:     p.IBAN,
		BIC:      p.BIC,
		Currency: p.Currency,
		Purpose:  p.Purpose,
	}
}

// KafkaConfig enables order events. No brokers means events are dropped.
type KafkaConfig struct {
	Brokers    []string `mapstructure:"KAFKA_BROKERS"`
	OrderTopic string   `mapstructure:"KAFKA_ORDER_TOPIC"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type AuthConfig struct {
	AdminEmails []string `mapstructure:"ADMIN_EMAILS"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("READ_TIMEOUT", 15*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("REQUEST_TIMEOUT", 60*time.Second)

	v.SetDefault("DB_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("DB_MAX_CONNS", 10)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_DRIVER", DriverMemory)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("PAYMENT_NAMESPACE", payment.DefaultNamespace)
	v.SetDefault("PAYMENT_RECIPIENT_NAME", "Max Mustermann")
	v.SetDefault("PAYMENT_IBAN", "DE44500105175407324931")
	v.SetDefault("PAYMENT_BIC", "INGDDEFFXXX")
	v.SetDefault("PAYMENT_CURRENCY", "EUR")
	v.SetDefault("PAYMENT_PURPOSE", "")
	v.SetDefault("PAYMENT_QR_SIZE", 256)

	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_ORDER_TOPIC", "storefront.orders")

	v.SetDefault("ADMIN_EMAILS", []string{})
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the optional CONFIG_FILE and the environment,
// environment values taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// normalize trims list entries, since comma separated env values often carry
// spaces.
func (c *Config) normalize() {
	c.Kafka.Brokers = cleanList(c.Kafka.Brokers)
	c.Auth.AdminEmails = cleanList(c.Auth.AdminEmails)
	c.CORS.AllowedOrigins = cleanList(c.CORS.AllowedOrigins)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Session.Driver = strings.ToLower(strings.TrimSpace(c.Session.Driver))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("READ_TIMEOUT, WRITE_TIMEOUT and SHUTDOWN_TIMEOUT must be positive"))
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
			errs = append(errs, errors.New("DATABASE_URL must be a postgres:// URL when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid DB_DRIVER: %s (must be memory or postgres)", c.Database.Driver))
	}

	switch c.Session.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when SESSION_DRIVER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid SESSION_DRIVER: %s (must be memory or redis)", c.Session.Driver))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if c.Payment.Namespace == "" || len(c.Payment.Namespace) > maxNamespaceLength || strings.ContainsAny(c.Payment.Namespace, "\r\n") {
		errs = append(errs, fmt.Errorf("PAYMENT_NAMESPACE must be a single line of 1-%d characters", maxNamespaceLength))
	}
	if err := c.Payment.Recipient().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("payment recipient: %w", err))
	}
	if c.Payment.QRSize < 64 || c.Payment.QRSize > 2048 {
		errs = append(errs, fmt.Errorf("PAYMENT_QR_SIZE must be between 64 and 2048, got %d", c.Payment.QRSize))
	}

	if c.Kafka.Enabled() && c.Kafka.OrderTopic == "" {
		errs = append(errs, errors.New("KAFKA_ORDER_TOPIC is required when KAFKA_BROKERS is set"))
	}

	if slices.Contains(c.CORS.AllowedOrigins, "*") {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS cannot contain * because cookies are sent with credentials"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	return errors.Join(errs...)
}

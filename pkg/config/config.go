package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Auth     AuthConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPFOLIO_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPFOLIO_APP_PORT" default:"4242"`
	LogLevel     string `envconfig:"SHOPFOLIO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPFOLIO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPFOLIO_REDIS_URL"`
	Address      string        `envconfig:"SHOPFOLIO_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPFOLIO_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPFOLIO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPFOLIO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPFOLIO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPFOLIO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPFOLIO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPFOLIO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey string `envconfig:"STRIPE_SECRET_KEY"`
	Env    string `envconfig:"SHOPFOLIO_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// CheckoutConfig drives the client-side checkout flow.
type CheckoutConfig struct {
	BackendURL        string        `envconfig:"SHOPFOLIO_STRIPE_BACKEND_URL"`
	RequestTimeout    time.Duration `envconfig:"SHOPFOLIO_CHECKOUT_TIMEOUT" default:"10s"`
	ShippingFee       string        `envconfig:"SHOPFOLIO_CHECKOUT_SHIPPING_FEE" default:"5.99"`
	FreeShippingAbove string        `envconfig:"SHOPFOLIO_CHECKOUT_FREE_SHIPPING_ABOVE" default:"50"`
}

// ShippingFeeAmount parses the configured flat shipping fee.
func (c CheckoutConfig) ShippingFeeAmount() (decimal.Decimal, error) {
	return parseAmount("SHOPFOLIO_CHECKOUT_SHIPPING_FEE", c.ShippingFee)
}

// FreeShippingThreshold parses the subtotal above which shipping is free.
func (c CheckoutConfig) FreeShippingThreshold() (decimal.Decimal, error) {
	return parseAmount("SHOPFOLIO_CHECKOUT_FREE_SHIPPING_ABOVE", c.FreeShippingAbove)
}

type CatalogConfig struct {
	BaseURL        string        `envconfig:"SHOPFOLIO_CATALOG_URL" default:"https://fakestoreapi.com"`
	RequestTimeout time.Duration `envconfig:"SHOPFOLIO_CATALOG_TIMEOUT" default:"10s"`
}

type AuthConfig struct {
	APIKey         string        `envconfig:"SHOPFOLIO_AUTH_API_KEY"`
	BaseURL        string        `envconfig:"SHOPFOLIO_AUTH_URL" default:"https://identitytoolkit.googleapis.com/v1"`
	RequestTimeout time.Duration `envconfig:"SHOPFOLIO_AUTH_TIMEOUT" default:"10s"`
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q: %w", name, raw, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: amount must be non-negative", name)
	}
	return amount, nil
}

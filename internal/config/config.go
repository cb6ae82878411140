package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Env              string
	Port             int
	AssetsDir        string
	JWTSecret        string
	LogJSON          bool
	LogLevel         string
	SiteURL          string
	DeliveryFee      decimal.Decimal
	RestaurantPhone  string
	Currency         string
	MercadoPagoToken string `json:"-"`
	MercadoPagoURL   string
	StoreBackend     string
	RedisAddr        string
	SQLitePath       string
	DatabaseURL      string `json:"-"`
	AdminUser        string
	AdminPassword    string `json:"-"`
	SessionTTL       time.Duration
	MaxSessions      int
	DispatchDelay    time.Duration
	TrustProxy       bool
	OTLPEndpoint     string
}

func Default() Config {
	return Config{
		Env:             "dev",
		Port:            5000,
		AssetsDir:       "./assets",
		JWTSecret:       "",
		LogJSON:         true,
		LogLevel:        "info",
		DeliveryFee:     decimal.NewFromInt(500),
		RestaurantPhone: "+5492610000000",
		Currency:        "ARS",
		MercadoPagoURL:  "https://api.mercadopago.com",
		StoreBackend:    "memory",
		RedisAddr:       "127.0.0.1:6379",
		SQLitePath:      "./data/sessions.db",
		AdminUser:       "admin",
		SessionTTL:      24 * time.Hour,
		MaxSessions:     10000,
		DispatchDelay:   2 * time.Second,
	}
}

// Check rejects settings that are only safe in local development.
func (c Config) Check() error {
	if c.Env != "dev" && c.SiteURL == "" {
		return errors.New("STOREFRONT_SITE_URL is required outside dev")
	}
	return nil
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

func fromEnv(c Config) Config {
	if v := os.Getenv("STOREFRONT_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("STOREFRONT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("STOREFRONT_ASSETS_DIR"); v != "" {
		c.AssetsDir = v
	}
	if v := os.Getenv("STOREFRONT_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("STOREFRONT_LOG_JSON"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.LogJSON = true
		case "0", "false", "FALSE":
			c.LogJSON = false
		}
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("STOREFRONT_SITE_URL"); v != "" {
		c.SiteURL = v
	}
	if v := os.Getenv("STOREFRONT_DELIVERY_FEE"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil && d.IsPositive() {
			c.DeliveryFee = d
		}
	}
	if v := os.Getenv("STOREFRONT_RESTAURANT_PHONE"); v != "" {
		c.RestaurantPhone = v
	}
	if v := os.Getenv("STOREFRONT_CURRENCY"); v != "" {
		c.Currency = v
	}
	if v := os.Getenv("MERCADOPAGO_ACCESS_TOKEN"); v != "" {
		c.MercadoPagoToken = v
	}
	if v := os.Getenv("STOREFRONT_MERCADOPAGO_URL"); v != "" {
		c.MercadoPagoURL = v
	}
	if v := os.Getenv("STOREFRONT_STORE"); v != "" {
		c.StoreBackend = v
	}
	if v := os.Getenv("STOREFRONT_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("STOREFRONT_SQLITE_PATH"); v != "" {
		c.SQLitePath = v
	}
	if v := os.Getenv("STOREFRONT_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("STOREFRONT_ADMIN_USER"); v != "" {
		c.AdminUser = v
	}
	if v := os.Getenv("STOREFRONT_ADMIN_PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv("STOREFRONT_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := os.Getenv("STOREFRONT_MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSessions = n
		}
	}
	if v := os.Getenv("STOREFRONT_TRUST_PROXY"); v != "" {
		switch v {
		case "1", "true", "TRUE":
			c.TrustProxy = true
		case "0", "false", "FALSE":
			c.TrustProxy = false
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.OTLPEndpoint = v
	}
	if v := os.Getenv("STOREFRONT_DISPATCH_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DispatchDelay = d
		}
	}
	return c
}

package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEnvDefaults_Overrides(t *testing.T) {
	t.Setenv("STOREFRONT_PORT", "8081")
	t.Setenv("STOREFRONT_DELIVERY_FEE", "650.50")
	t.Setenv("STOREFRONT_LOG_JSON", "false")
	t.Setenv("STOREFRONT_STORE", "sqlite")
	t.Setenv("STOREFRONT_SESSION_TTL", "30m")
	t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "TEST-abc")

	c := EnvDefaults()
	if c.Port != 8081 {
		t.Fatalf("port = %d", c.Port)
	}
	if !c.DeliveryFee.Equal(decimal.RequireFromString("650.50")) {
		t.Fatalf("delivery fee = %s", c.DeliveryFee)
	}
	if c.LogJSON {
		t.Fatalf("log json should be off")
	}
	if c.StoreBackend != "sqlite" || c.SessionTTL != 30*time.Minute || c.MercadoPagoToken != "TEST-abc" {
		t.Fatalf("unexpected config %+v", c)
	}
}

func TestEnvDefaults_IgnoresBadValues(t *testing.T) {
	t.Setenv("STOREFRONT_PORT", "abc")
	t.Setenv("STOREFRONT_DELIVERY_FEE", "-10")
	t.Setenv("STOREFRONT_SESSION_TTL", "forever")

	c := EnvDefaults()
	d := Default()
	if c.Port != d.Port || !c.DeliveryFee.Equal(d.DeliveryFee) || c.SessionTTL != d.SessionTTL {
		t.Fatalf("bad values must fall back to defaults, got %+v", c)
	}
}

func TestEnvDefaults_ProxyAndTracing(t *testing.T) {
	t.Setenv("STOREFRONT_TRUST_PROXY", "true")
	t.Setenv("STOREFRONT_MAX_SESSIONS", "50")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	c := EnvDefaults()
	if !c.TrustProxy || c.MaxSessions != 50 || c.OTLPEndpoint != "http://collector:4317" {
		t.Fatalf("unexpected config %+v", c)
	}
}

func TestCheck_RequiresSiteURLOutsideDev(t *testing.T) {
	c := Default()
	if err := c.Check(); err != nil {
		t.Fatalf("dev config should pass: %v", err)
	}
	c.Env = "prod"
	if err := c.Check(); err == nil {
		t.Fatalf("prod without site url should fail")
	}
	c.SiteURL = "https://kingo.example"
	if err := c.Check(); err != nil {
		t.Fatalf("prod with site url should pass: %v", err)
	}
}

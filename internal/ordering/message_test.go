package ordering

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

func sampleDeliveryOrder() domain.OrderState {
	return domain.OrderState{
		Mode: domain.ModeDelivery,
		Items: []domain.CartItem{
			{ID: "1", Name: "Burger", Price: decimal.NewFromInt(1000), Quantity: 2, Notes: "no onion"},
			{ID: "2", Name: "Fries", Price: decimal.NewFromInt(500), Quantity: 1},
		},
		Subtotal:    decimal.NewFromInt(2500),
		DeliveryFee: decimal.NewFromInt(500),
		Total:       decimal.NewFromInt(3000),
		CustomerData: domain.CustomerData{
			Name:           "Juan Perez",
			Phone:          "123456789",
			Address:        "Calle Falsa 123",
			AddressDetails: "PB A",
		},
		MercadoPago: &domain.PaymentInfo{PaymentID: "1234567890"},
		Timestamp:   time.Now(),
	}
}

func assertInOrder(t *testing.T, msg string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(msg[pos:], p)
		if i < 0 {
			t.Fatalf("%q not found after offset %d in:\n%s", p, pos, msg)
		}
		pos += i + len(p)
	}
}

func TestFormatMessage_Delivery(t *testing.T) {
	msg := FormatMessage(sampleDeliveryOrder())
	assertInOrder(t, msg,
		"Hola! Pago realizado ✅",
		"ID de pago Mercado Pago: 1234567890",
		"Modalidad: DELIVERY",
		"Nombre: Juan Perez",
		"Teléfono: 123456789",
		"2x Burger ($2.000)",
		"\n  Nota: no onion",
		"1x Fries ($500)",
		"Subtotal: $2.500",
		"Envío: $500",
		"TOTAL: $3.000",
		"Dirección: Calle Falsa 123",
		"Detalles: PB A",
		"Notas adicionales: Sin notas",
	)
}

func TestFormatMessage_Pickup(t *testing.T) {
	o := sampleDeliveryOrder()
	o.Mode = domain.ModePickup
	o.DeliveryFee = decimal.Zero
	o.Total = decimal.NewFromInt(2500)
	o.MercadoPago = nil
	o.OrderNotes = "tocar timbre"
	msg := FormatMessage(o)

	if strings.Contains(msg, "ID de pago") {
		t.Fatalf("payment line without payment id")
	}
	if strings.Contains(msg, "Envío") || strings.Contains(msg, "Dirección") {
		t.Fatalf("pickup message must not carry delivery lines:\n%s", msg)
	}
	assertInOrder(t, msg, "Modalidad: RETIRO EN LOCAL", "TOTAL: $2.500", "Notas adicionales: tocar timbre")
}

func TestWhatsAppURL(t *testing.T) {
	u := WhatsAppURL("+54 9 261 000-0000", "Hola! 2x Burger & papas")
	if !strings.HasPrefix(u, "https://wa.me/5492610000000?text=") {
		t.Fatalf("unexpected url %s", u)
	}
	if strings.Contains(u, "+") {
		t.Fatalf("spaces must be encoded as %%20: %s", u)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.Query().Get("text"); got != "Hola! 2x Burger & papas" {
		t.Fatalf("text round trip = %q", got)
	}
}

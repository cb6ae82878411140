package ordering

import (
	"net/url"
	"strconv"
	"strings"

	"storefront-backend/internal/domain"
)

func modeLabel(m domain.OrderMode) string {
	if m == domain.ModeDelivery {
		return "DELIVERY"
	}
	return "RETIRO EN LOCAL"
}

// FormatMessage renders the kitchen ticket sent over WhatsApp.
func FormatMessage(o domain.OrderState) string {
	var b strings.Builder
	b.WriteString("Hola! Pago realizado ✅\n")
	if o.MercadoPago != nil && o.MercadoPago.PaymentID != "" {
		b.WriteString("ID de pago Mercado Pago: " + o.MercadoPago.PaymentID + "\n")
	}

	b.WriteString("\nModalidad: " + modeLabel(o.Mode) + "\n")
	b.WriteString("Nombre: " + o.CustomerData.Name + "\n")
	b.WriteString("Teléfono: " + o.CustomerData.Phone + "\n")

	b.WriteString("\nPedido:\n")
	for _, it := range o.Items {
		b.WriteString("• " + strconv.Itoa(it.Quantity) + "x " + it.Name + " ($" + FormatAmount(it.LineTotal()) + ")\n")
		if it.Notes != "" {
			b.WriteString("  Nota: " + it.Notes + "\n")
		}
	}

	b.WriteString("\nSubtotal: $" + FormatAmount(o.Subtotal) + "\n")
	if o.Mode == domain.ModeDelivery {
		b.WriteString("Envío: $" + FormatAmount(o.DeliveryFee) + "\n")
	}
	b.WriteString("TOTAL: $" + FormatAmount(o.Total) + "\n")

	if o.Mode == domain.ModeDelivery && o.CustomerData.Address != "" {
		b.WriteString("\nDirección: " + o.CustomerData.Address + "\n")
		if o.CustomerData.AddressDetails != "" {
			b.WriteString("Detalles: " + o.CustomerData.AddressDetails + "\n")
		}
	}

	if o.OrderNotes != "" {
		b.WriteString("\nNotas adicionales: " + o.OrderNotes)
	} else {
		b.WriteString("\nNotas adicionales: Sin notas")
	}
	return b.String()
}

// WhatsAppURL builds a wa.me link that opens a chat with phone prefilled with message.
func WhatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}

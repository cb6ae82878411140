package ordering

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

// DefaultDeliveryFee applies when neither config nor settings provide one.
var DefaultDeliveryFee = decimal.NewFromInt(500)

type FeePolicy struct {
	Delivery decimal.Decimal
}

func (p FeePolicy) Fee(mode domain.OrderMode) decimal.Decimal {
	if mode == domain.ModeDelivery {
		return p.Delivery
	}
	return decimal.Zero
}

// Totals prices items for the given mode.
func (p FeePolicy) Totals(items []domain.CartItem, mode domain.OrderMode) (subtotal, fee, total decimal.Decimal) {
	subtotal = domain.Subtotal(items)
	fee = p.Fee(mode)
	return subtotal, fee, subtotal.Add(fee)
}

package ordering

import (
	"strings"

	"storefront-backend/internal/domain"
)

type FieldKey string

const (
	FieldMode          FieldKey = "mode"
	FieldCustomerName  FieldKey = "customerName"
	FieldCustomerPhone FieldKey = "customerPhone"
	FieldAddress       FieldKey = "address"
	FieldItems         FieldKey = "items"
	FieldTotals        FieldKey = "totals"
)

var fieldMessages = map[FieldKey]string{
	FieldMode:          "Debes seleccionar un modo de entrega",
	FieldCustomerName:  "El nombre es obligatorio",
	FieldCustomerPhone: "El teléfono es obligatorio",
	FieldAddress:       "La dirección es obligatoria para delivery",
	FieldItems:         "El carrito está vacío",
	FieldTotals:        "El total del pedido es inválido",
}

func FieldMessage(k FieldKey) string {
	return fieldMessages[k]
}

type Result struct {
	Valid       bool                `json:"valid"`
	Errors      []FieldKey          `json:"errors"`
	FieldErrors map[FieldKey]string `json:"fieldErrors"`
}

func (r *Result) fail(k FieldKey) {
	r.Errors = append(r.Errors, k)
	r.FieldErrors[k] = fieldMessages[k]
}

// Validate checks a possibly partial order. Every rule runs; errors accumulate.
// A total of exactly zero is rejected.
func Validate(o domain.OrderState) Result {
	r := Result{FieldErrors: map[FieldKey]string{}}
	if !o.Mode.Valid() {
		r.fail(FieldMode)
	}
	if strings.TrimSpace(o.CustomerData.Name) == "" {
		r.fail(FieldCustomerName)
	}
	if strings.TrimSpace(o.CustomerData.Phone) == "" {
		r.fail(FieldCustomerPhone)
	}
	if o.Mode == domain.ModeDelivery && strings.TrimSpace(o.CustomerData.Address) == "" {
		r.fail(FieldAddress)
	}
	if len(o.Items) == 0 {
		r.fail(FieldItems)
	}
	if !o.Total.IsPositive() {
		r.fail(FieldTotals)
	}
	r.Valid = len(r.Errors) == 0
	return r
}

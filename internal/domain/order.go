package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderMode string

const (
	ModeDelivery OrderMode = "DELIVERY"
	ModePickup   OrderMode = "PICKUP"
)

func (m OrderMode) Valid() bool {
	return m == ModeDelivery || m == ModePickup
}

// ItemID identifies a product. Clients may send it as a JSON string or number.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*id = ItemID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

type CartItem struct {
	ID       ItemID          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CustomerData struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Address        string `json:"address,omitempty"`
	AddressDetails string `json:"addressDetails,omitempty"`
}

type PaymentStatus string

const (
	PaymentApproved  PaymentStatus = "approved"
	PaymentPending   PaymentStatus = "pending"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentInProcess PaymentStatus = "in_process"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentInfo struct {
	PreferenceID string        `json:"preferenceId,omitempty"`
	PaymentID    string        `json:"paymentId,omitempty"`
	Status       PaymentStatus `json:"status,omitempty"`
}

// Merge returns p with every non-empty field of other applied on top.
func (p PaymentInfo) Merge(other PaymentInfo) PaymentInfo {
	if other.PreferenceID != "" {
		p.PreferenceID = other.PreferenceID
	}
	if other.PaymentID != "" {
		p.PaymentID = other.PaymentID
	}
	if other.Status != "" {
		p.Status = other.Status
	}
	return p
}

type OrderState struct {
	Mode         OrderMode       `json:"mode"`
	Items        []CartItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Total        decimal.Decimal `json:"total"`
	CustomerData CustomerData    `json:"customerData"`
	OrderNotes   string          `json:"orderNotes,omitempty"`
	MercadoPago  *PaymentInfo    `json:"mercadoPago,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (o *OrderState) Clone() *OrderState {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = CloneItems(o.Items)
	if o.MercadoPago != nil {
		mp := *o.MercadoPago
		cp.MercadoPago = &mp
	}
	return &cp
}

func (o *OrderState) PaymentStatus() PaymentStatus {
	if o == nil || o.MercadoPago == nil {
		return ""
	}
	return o.MercadoPago.Status
}

func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}

func Subtotal(items []CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func ItemCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Stage is the lifecycle position of a session's order.
type Stage string

const (
	StageEmpty    Stage = "empty"
	StageBuilding Stage = "building"
	StageComplete Stage = "complete"
	StagePaid     Stage = "paid"
	StageCleared  Stage = "cleared"
)

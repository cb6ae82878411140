package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID          ItemID          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image,omitempty"`
}

type Promo struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Urgency     string          `json:"urgency"`
}

type Hours struct {
	Weekdays string `json:"weekdays"`
	Weekends string `json:"weekends"`
}

type Settings struct {
	Name        string          `json:"name"`
	Slogan      string          `json:"slogan"`
	Tagline     string          `json:"tagline"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	MapURL      string          `json:"mapUrl,omitempty"`
	Hours       Hours           `json:"hours"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Promos      []Promo         `json:"promos"`
}

// SettingsPatch carries the fields an admin wants to change; nil fields are kept.
type SettingsPatch struct {
	Name        *string          `json:"name"`
	Slogan      *string          `json:"slogan"`
	Tagline     *string          `json:"tagline"`
	Phone       *string          `json:"phone"`
	Address     *string          `json:"address"`
	MapURL      *string          `json:"mapUrl"`
	Hours       *Hours           `json:"hours"`
	DeliveryFee *decimal.Decimal `json:"deliveryFee"`
	Promos      []Promo          `json:"promos"`
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Slogan != nil {
		s.Slogan = *p.Slogan
	}
	if p.Tagline != nil {
		s.Tagline = *p.Tagline
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.MapURL != nil {
		s.MapURL = *p.MapURL
	}
	if p.Hours != nil {
		s.Hours = *p.Hours
	}
	if p.DeliveryFee != nil {
		s.DeliveryFee = *p.DeliveryFee
	}
	if p.Promos != nil {
		s.Promos = p.Promos
	}
	return s
}

// ArchivedOrder is the record kept for the admin dashboard once an order is sent to the kitchen.
type ArchivedOrder struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Items        []CartItem      `json:"items"`
	Mode         OrderMode       `json:"mode"`
	CustomerName string          `json:"customerName"`
	PaymentID    string          `json:"paymentId,omitempty"`
}

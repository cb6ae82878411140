package usecase

import (
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

func DefaultSettings(phone string, deliveryFee decimal.Decimal) domain.Settings {
	return domain.Settings{
		Name:    "BURGER KINGO",
		Slogan:  "La Verdadera Bestia",
		Tagline: "Carne 100% roast beef, pan de papa y nuestra salsa secreta",
		Phone:   phone,
		Address: "Av. San Martín 1234, Centro, Mendoza",
		Hours: domain.Hours{
			Weekdays: "Lunes a Viernes: 12:00 - 15:00 | 19:00 - 00:00",
			Weekends: "Sábados y Domingos: 12:00 - 01:00",
		},
		DeliveryFee: deliveryFee,
		Promos: []domain.Promo{
			{ID: "promo-1", Title: "3x2 en Burgers", Description: "Tres Bestias Originales por el precio de dos. ¡Ideal para compartir!", Price: decimal.NewFromInt(9000), Urgency: "Solo por tiempo limitado"},
			{ID: "promo-2", Title: "Pack Finde", Description: "2 Kingo BBQ + 1 Papas Cheddar Gigantes + 2 Pintas de Cerveza", Price: decimal.NewFromInt(12500), Urgency: "Viernes y Sábados"},
			{ID: "promo-3", Title: "Family Box", Description: "4 Hamburguesas a elección + 2 Papas Grandes + 1 Gaseosa 1.5L", Price: decimal.NewFromInt(18000), Urgency: "Todos los días"},
		},
	}
}

func DefaultMenu() []domain.MenuItem {
	return []domain.MenuItem{
		{ID: "1", Name: "La Bestia Original", Description: "Doble carne de roast beef, queso cheddar, bacon, cebolla caramelizada", Price: decimal.NewFromInt(4500), Category: "Hamburguesas", Image: "/gourmet-double-burger-with-cheese-and-bacon-dark-b.jpg"},
		{ID: "2", Name: "Kingo BBQ", Description: "Carne smash, salsa barbacoa ahumada, aros de cebolla y cheddar", Price: decimal.NewFromInt(4800), Category: "Hamburguesas"},
		{ID: "3", Name: "Papas Cheddar", Description: "Papas rústicas con cheddar fundido y verdeo", Price: decimal.NewFromInt(2500), Category: "Acompañamientos"},
		{ID: "4", Name: "Pinta de Cerveza", Description: "Rubia, roja o negra", Price: decimal.NewFromInt(1800), Category: "Bebidas"},
	}
}

package usecase

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/ordering"
)

type CatalogRepo interface {
	ListMenu() ([]domain.MenuItem, error)
	GetMenuItem(id domain.ItemID) (*domain.MenuItem, bool, error)
	PutMenuItem(*domain.MenuItem) error
	DeleteMenuItem(id domain.ItemID) (bool, error)
	GetSettings() (*domain.Settings, bool, error)
	PutSettings(*domain.Settings) error
}

// CatalogService serves the menu and restaurant settings, and lets admins edit both.
type CatalogService struct {
	Repo       CatalogRepo
	DefaultFee decimal.Decimal
	Log        *slog.Logger

	mu sync.Mutex
}

// Seed fills an empty repo with the given settings and menu.
func (s *CatalogService) Seed(settings domain.Settings, menu []domain.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.Repo.GetSettings()
	if err != nil {
		return err
	}
	if !ok {
		if err := s.Repo.PutSettings(&settings); err != nil {
			return err
		}
	}
	existing, err := s.Repo.ListMenu()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := range menu {
		if err := s.Repo.PutMenuItem(&menu[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogService) Menu() ([]domain.MenuItem, error) {
	items, err := s.Repo.ListMenu()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.MenuItem{}
	}
	return items, nil
}

// CartItem resolves a product into a cart line so prices always come from the catalog.
func (s *CatalogService) CartItem(id domain.ItemID, notes string) (domain.CartItem, error) {
	it, ok, err := s.Repo.GetMenuItem(id)
	if err != nil {
		return domain.CartItem{}, err
	}
	if !ok {
		return domain.CartItem{}, ErrItemNotFound
	}
	return domain.CartItem{
		ID:       it.ID,
		Name:     it.Name,
		Price:    it.Price,
		Quantity: 1,
		Image:    it.Image,
		Notes:    notes,
	}, nil
}

func checkMenuItem(it *domain.MenuItem) error {
	if strings.TrimSpace(it.Name) == "" {
		return ErrBadRequest("name required")
	}
	if !it.Price.IsPositive() {
		return ErrBadRequest("price must be positive")
	}
	return nil
}

func (s *CatalogService) CreateItem(it domain.MenuItem) (*domain.MenuItem, error) {
	if err := checkMenuItem(&it); err != nil {
		return nil, err
	}
	it.ID = domain.ItemID(uuid.NewString())
	if err := s.Repo.PutMenuItem(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *CatalogService) UpdateItem(id domain.ItemID, it domain.MenuItem) (*domain.MenuItem, error) {
	_, ok, err := s.Repo.GetMenuItem(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	if err := checkMenuItem(&it); err != nil {
		return nil, err
	}
	it.ID = id
	if err := s.Repo.PutMenuItem(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *CatalogService) DeleteItem(id domain.ItemID) error {
	ok, err := s.Repo.DeleteMenuItem(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func (s *CatalogService) Settings() (domain.Settings, error) {
	st, ok, err := s.Repo.GetSettings()
	if err != nil {
		return domain.Settings{}, err
	}
	if !ok {
		return domain.Settings{}, ErrNotFound("settings")
	}
	return *st, nil
}

func (s *CatalogService) UpdateSettings(p domain.SettingsPatch) (domain.Settings, error) {
	if p.DeliveryFee != nil && p.DeliveryFee.IsNegative() {
		return domain.Settings{}, ErrBadRequest("deliveryFee must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok, err := s.Repo.GetSettings()
	if err != nil {
		return domain.Settings{}, err
	}
	if !ok {
		cur = &domain.Settings{}
	}
	next := cur.Apply(p)
	if err := s.Repo.PutSettings(&next); err != nil {
		return domain.Settings{}, err
	}
	return next, nil
}

// FeePolicy uses the admin-set delivery fee when there is one, else the configured default.
// Unreadable settings fall back to the default and are logged.
func (s *CatalogService) FeePolicy() ordering.FeePolicy {
	fee := s.DefaultFee
	st, ok, err := s.Repo.GetSettings()
	switch {
	case err != nil:
		s.log().Warn("settings unavailable, using default delivery fee", "error", err)
	case ok && st.DeliveryFee.IsPositive():
		fee = st.DeliveryFee
	}
	return ordering.FeePolicy{Delivery: fee}
}

func (s *CatalogService) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

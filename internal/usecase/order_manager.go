package usecase

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/ordering"
	"storefront-backend/internal/persist"
)

// OrderManager owns one shopper's cart and in-progress order.
// It is not safe for concurrent use; Session serializes access.
type OrderManager struct {
	store   *persist.Adapter
	fees    func() ordering.FeePolicy
	now     func() time.Time
	cart    []domain.CartItem
	order   *domain.OrderState
	cleared bool
}

func NewOrderManager(store *persist.Adapter, fees func() ordering.FeePolicy) *OrderManager {
	if fees == nil {
		fees = func() ordering.FeePolicy { return ordering.FeePolicy{Delivery: ordering.DefaultDeliveryFee} }
	}
	return &OrderManager{
		store: store,
		fees:  fees,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type Snapshot struct {
	Cart      []domain.CartItem  `json:"cart"`
	CartTotal decimal.Decimal    `json:"cartTotal"`
	CartCount int                `json:"cartCount"`
	Order     *domain.OrderState `json:"order"`
	Stage     domain.Stage       `json:"stage"`
}

func (m *OrderManager) Snapshot() Snapshot {
	cart := domain.CloneItems(m.cart)
	if cart == nil {
		cart = []domain.CartItem{}
	}
	return Snapshot{
		Cart:      cart,
		CartTotal: domain.Subtotal(m.cart),
		CartCount: domain.ItemCount(m.cart),
		Order:     m.order.Clone(),
		Stage:     m.Stage(),
	}
}

func (m *OrderManager) Cart() []domain.CartItem { return domain.CloneItems(m.cart) }

func (m *OrderManager) Order() *domain.OrderState { return m.order.Clone() }

func (m *OrderManager) Stage() domain.Stage {
	switch {
	case m.order != nil && m.order.PaymentStatus() != "":
		return domain.StagePaid
	case m.order != nil && ordering.Validate(*m.order).Valid:
		return domain.StageComplete
	case m.order != nil || len(m.cart) > 0:
		return domain.StageBuilding
	case m.cleared:
		return domain.StageCleared
	default:
		return domain.StageEmpty
	}
}

// Restore reloads durable state. A saved order wins over a saved cart and
// becomes the cart as well.
func (m *OrderManager) Restore(ctx context.Context) {
	var o domain.OrderState
	if m.store.Load(ctx, persist.OrderKey, &o) {
		m.order = &o
		m.cart = sanitize(domain.CloneItems(o.Items))
		return
	}
	var cart []domain.CartItem
	if m.store.Load(ctx, persist.CartKey, &cart) {
		m.cart = sanitize(cart)
	}
}

func sanitize(items []domain.CartItem) []domain.CartItem {
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}
	return items
}

func (m *OrderManager) indexOf(id domain.ItemID) int {
	for i, it := range m.cart {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// AddItem bumps the quantity of an item already in the cart or appends it with quantity 1.
func (m *OrderManager) AddItem(ctx context.Context, item domain.CartItem) {
	if i := m.indexOf(item.ID); i >= 0 {
		m.cart[i].Quantity++
	} else {
		item.Quantity = 1
		m.cart = append(m.cart, item)
	}
	m.cleared = false
	m.saveCart(ctx)
}

// RemoveItem drops the item. Emptying the cart deletes the stored cart record.
func (m *OrderManager) RemoveItem(ctx context.Context, id domain.ItemID) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.cart = append(m.cart[:i], m.cart[i+1:]...)
	m.saveCart(ctx)
	return true
}

// UpdateQuantity adds delta to the item's quantity, never going below 1.
func (m *OrderManager) UpdateQuantity(ctx context.Context, id domain.ItemID, delta int) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.cart[i].Quantity = addQuantity(m.cart[i].Quantity, delta)
	m.saveCart(ctx)
	return true
}

// addQuantity saturates at math.MaxInt and floors at 1.
func addQuantity(q, delta int) int {
	if delta > 0 && q > math.MaxInt-delta {
		return math.MaxInt
	}
	return max(1, q+delta)
}

func (m *OrderManager) saveCart(ctx context.Context) {
	if len(m.cart) == 0 {
		m.store.Clear(ctx, persist.CartKey)
		return
	}
	m.store.Save(ctx, persist.CartKey, m.cart)
}

// Candidate prices the current cart as an order without touching state.
func (m *OrderManager) Candidate(mode domain.OrderMode, data domain.CustomerData, notes string) domain.OrderState {
	sub, fee, total := m.fees().Totals(m.cart, mode)
	return domain.OrderState{
		Mode:         mode,
		Items:        domain.CloneItems(m.cart),
		Subtotal:     sub,
		DeliveryFee:  fee,
		Total:        total,
		CustomerData: data,
		OrderNotes:   notes,
		Timestamp:    m.now(),
	}
}

// SetMode reprices the order for mode, keeping customer data, notes and payment info.
func (m *OrderManager) SetMode(mode domain.OrderMode) {
	next := m.Candidate(mode, domain.CustomerData{}, "")
	if m.order != nil {
		next.CustomerData = m.order.CustomerData
		next.OrderNotes = m.order.OrderNotes
		next.MercadoPago = m.order.MercadoPago
	}
	m.order = &next
}

// SetCustomerData starts a delivery order with no fee yet when none exists.
func (m *OrderManager) SetCustomerData(data domain.CustomerData) {
	if m.order == nil {
		sub := domain.Subtotal(m.cart)
		m.order = &domain.OrderState{
			Mode:         domain.ModeDelivery,
			Items:        domain.CloneItems(m.cart),
			Subtotal:     sub,
			DeliveryFee:  decimal.Zero,
			Total:        sub,
			CustomerData: data,
			Timestamp:    m.now(),
		}
		return
	}
	m.order.CustomerData = data
}

func (m *OrderManager) SetNotes(notes string) bool {
	if m.order == nil {
		return false
	}
	m.order.OrderNotes = notes
	return true
}

func (m *OrderManager) MergePaymentInfo(info domain.PaymentInfo) bool {
	if m.order == nil {
		return false
	}
	var cur domain.PaymentInfo
	if m.order.MercadoPago != nil {
		cur = *m.order.MercadoPago
	}
	merged := cur.Merge(info)
	m.order.MercadoPago = &merged
	return true
}

// CreateCompleteOrder replaces any order with one built from the current cart.
func (m *OrderManager) CreateCompleteOrder(mode domain.OrderMode, data domain.CustomerData, notes string) *domain.OrderState {
	o := m.Candidate(mode, data, notes)
	m.order = &o
	return o.Clone()
}

// Persist writes the order record. Called right before leaving for the payment provider.
func (m *OrderManager) Persist(ctx context.Context) bool {
	if m.order == nil {
		return false
	}
	m.store.Save(ctx, persist.OrderKey, m.order)
	return true
}

func (m *OrderManager) Clear(ctx context.Context) {
	m.order = nil
	m.cart = nil
	m.cleared = true
	m.store.Clear(ctx, persist.OrderKey)
	m.store.Clear(ctx, persist.CartKey)
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/kv"
	"storefront-backend/internal/infrastructure/mercadopago"
	"storefront-backend/internal/ordering"
	"storefront-backend/internal/persist"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeProvider) CreatePreference(ctx context.Context, items []mercadopago.Item) (mercadopago.Preference, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return mercadopago.Preference{}, f.err
	}
	return mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}, nil
}

type fakeArchive struct {
	orders []domain.ArchivedOrder
}

func (a *fakeArchive) PutArchived(o *domain.ArchivedOrder) error {
	a.orders = append(a.orders, *o)
	return nil
}

func (a *fakeArchive) ListArchived(page, pageSize int) ([]domain.ArchivedOrder, int, error) {
	return a.orders, len(a.orders), nil
}

type staticRestaurant struct{ phone string }

func (r staticRestaurant) Settings() (domain.Settings, error) {
	return domain.Settings{Phone: r.phone}, nil
}

type checkoutFixture struct {
	svc      *CheckoutService
	provider *fakeProvider
	archive  *fakeArchive
	store    *kv.MemoryStore
	sess     *Session
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := kv.NewMemoryStore()
	provider := &fakeProvider{}
	archive := &fakeArchive{}
	reg := NewSessionRegistry(store, nil, time.Hour, nil)
	return &checkoutFixture{
		svc: &CheckoutService{
			Payments:   provider,
			Archive:    archive,
			Restaurant: staticRestaurant{phone: "+54 9 261 555-1234"},
		},
		provider: provider,
		archive:  archive,
		store:    store,
		sess:     reg.Get(context.Background(), "s1"),
	}
}

func (f *checkoutFixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_ = f.sess.Do(func(m *OrderManager) error {
		m.AddItem(ctx, burger("1", 4500))
		m.AddItem(ctx, burger("1", 4500))
		m.AddItem(ctx, burger("3", 2500))
		return nil
	})
}

func (f *checkoutFixture) order() *domain.OrderState {
	var o *domain.OrderState
	_ = f.sess.Do(func(m *OrderManager) error {
		o = m.Order()
		return nil
	})
	return o
}

var ana = domain.CustomerData{Name: "Ana", Phone: "2615551234", Address: "Calle 1"}

func TestSubmitInvalidLeavesStateUntouched(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fill(t)
	_, err := f.svc.Submit(context.Background(), f.sess, domain.ModeDelivery, domain.CustomerData{Name: "Ana"}, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Result.FieldErrors[ordering.FieldCustomerPhone]; !ok {
		t.Fatalf("missing phone error: %+v", verr.Result)
	}
	if _, ok := verr.Result.FieldErrors[ordering.FieldAddress]; !ok {
		t.Fatalf("missing address error: %+v", verr.Result)
	}
	if f.order() != nil {
		t.Fatalf("invalid submit must not create an order")
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	_, err := f.svc.Submit(context.Background(), f.sess, domain.ModePickup, ana, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Result.FieldErrors[ordering.FieldItems]; !ok {
		t.Fatalf("missing items error: %+v", verr.Result)
	}
}

func TestSubmitPricesOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fill(t)
	o, err := f.svc.Submit(context.Background(), f.sess, domain.ModeDelivery, ana, "sin cebolla")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !o.Subtotal.Equal(decimal.NewFromInt(11500)) || !o.Total.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("unexpected totals: %s %s", o.Subtotal, o.Total)
	}
	o, _ = f.svc.Submit(context.Background(), f.sess, domain.ModePickup, ana, "")
	if !o.DeliveryFee.IsZero() || !o.Total.Equal(o.Subtotal) {
		t.Fatalf("pickup must not carry a fee: %+v", o)
	}
}

func TestStartPaymentSuccessPersists(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fill(t)
	if _, err := f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	r, err := f.svc.StartPayment(ctx, f.sess)
	if err != nil {
		t.Fatalf("start payment: %v", err)
	}
	if r.RedirectURL != "https://mp.example/init" || r.PreferenceID != "pref-1" {
		t.Fatalf("unexpected redirect: %+v", r)
	}
	raw, ok, _ := f.store.Get(ctx, "s1:"+persist.OrderKey)
	if !ok || !strings.Contains(raw, `"preferenceId":"pref-1"`) {
		t.Fatalf("order not persisted with preference: %q", raw)
	}
}

func TestStartPaymentFailureDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.provider.err = &mercadopago.ProviderError{Status: 401, Message: "invalid token", Details: "bad"}
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
	_, err := f.svc.StartPayment(ctx, f.sess)
	var perr *PaymentError
	if !errors.As(err, &perr) || perr.Message != "invalid token" || perr.Details != "bad" {
		t.Fatalf("expected PaymentError, got %v", err)
	}
	if f.order().MercadoPago != nil {
		t.Fatalf("failed payment must not touch the order")
	}
	if _, ok, _ := f.store.Get(ctx, "s1:"+persist.OrderKey); ok {
		t.Fatalf("failed payment must not persist the order")
	}
}

func TestStartPaymentGenericError(t *testing.T) {
	f := newCheckoutFixture(t)
	f.provider.err = errors.New("dial tcp: timeout")
	f.fill(t)
	_, _ = f.svc.Submit(context.Background(), f.sess, domain.ModePickup, ana, "")
	_, err := f.svc.StartPayment(context.Background(), f.sess)
	var perr *PaymentError
	if !errors.As(err, &perr) || perr.Message != "Error creating preference" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStartPaymentRequiresOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.fill(t)
	if _, err := f.svc.StartPayment(context.Background(), f.sess); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if f.provider.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestStartPaymentRejectsConcurrentRequest(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.provider.block = make(chan struct{})
	f.provider.started = make(chan struct{})
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.StartPayment(ctx, f.sess)
		done <- err
	}()
	<-f.provider.started
	if _, err := f.svc.StartPayment(ctx, f.sess); !errors.Is(err, ErrPaymentInProgress) {
		t.Fatalf("expected ErrPaymentInProgress, got %v", err)
	}
	close(f.provider.block)
	if err := <-done; err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if f.provider.calls != 1 {
		t.Fatalf("provider called %d times", f.provider.calls)
	}
}

func TestReconcile(t *testing.T) {
	cases := []struct {
		status   string
		title    string
		dispatch bool
	}{
		{"approved", "¡Pago Confirmado!", true},
		{"pending", "Pago Pendiente", false},
		{"rejected", "Pago Rechazado", false},
		{"charged_back", "Estado Desconocido", false},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			ctx := context.Background()
			f := newCheckoutFixture(t)
			f.fill(t)
			_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
			v, err := f.svc.Reconcile(ctx, f.sess, ReturnParams{Result: "success", Status: tc.status, PaymentID: "77"})
			if err != nil {
				t.Fatalf("reconcile: %v", err)
			}
			if v.Title != tc.title || v.DispatchEnabled != tc.dispatch || v.PaymentID != "77" {
				t.Fatalf("unexpected view: %+v", v)
			}
			if !tc.dispatch && v.Detail == "" {
				t.Fatalf("non-approved views must explain the order is held")
			}
			if got := f.order().MercadoPago.Status; string(got) != tc.status {
				t.Fatalf("status stored as %q", got)
			}
		})
	}
}

func TestReconcileRestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
	if _, err := f.svc.StartPayment(ctx, f.sess); err != nil {
		t.Fatalf("start payment: %v", err)
	}

	// a fresh process with the same durable store
	reg := NewSessionRegistry(f.store, nil, time.Hour, nil)
	sess := reg.Get(ctx, "s1")
	v, err := f.svc.Reconcile(ctx, sess, ReturnParams{Status: "approved", PaymentID: "9"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if v.Order.MercadoPago.PreferenceID != "pref-1" || v.Order.MercadoPago.PaymentID != "9" {
		t.Fatalf("unexpected payment info: %+v", v.Order.MercadoPago)
	}
}

func TestReconcileErrors(t *testing.T) {
	f := newCheckoutFixture(t)
	if _, err := f.svc.Reconcile(context.Background(), f.sess, ReturnParams{}); !errors.Is(err, ErrMalformedReturn) {
		t.Fatalf("expected ErrMalformedReturn, got %v", err)
	}
	if _, err := f.svc.Reconcile(context.Background(), f.sess, ReturnParams{Status: "approved"}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestDispatchRequiresApproval(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
	_, _ = f.svc.Reconcile(ctx, f.sess, ReturnParams{Status: "pending"})
	if _, err := f.svc.Dispatch(ctx, f.sess); !errors.Is(err, ErrPaymentNotApproved) {
		t.Fatalf("expected ErrPaymentNotApproved, got %v", err)
	}
	if f.order() == nil {
		t.Fatalf("order must survive a refused dispatch")
	}
}

func TestDispatchClearsAndArchives(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModeDelivery, ana, "")
	_, _ = f.svc.StartPayment(ctx, f.sess)
	_, _ = f.svc.Reconcile(ctx, f.sess, ReturnParams{Status: "approved", PaymentID: "123"})

	res, err := f.svc.Dispatch(ctx, f.sess)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.HasPrefix(res.WhatsAppURL, "https://wa.me/5492615551234?text=") {
		t.Fatalf("unexpected url %q", res.WhatsAppURL)
	}
	if !strings.Contains(res.Message, "Ana") || res.RedirectAfterMs != 2000 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if f.order() != nil {
		t.Fatalf("order should be cleared")
	}
	if _, ok, _ := f.store.Get(ctx, "s1:"+persist.OrderKey); ok {
		t.Fatalf("stored order should be cleared")
	}
	if len(f.archive.orders) != 1 || f.archive.orders[0].PaymentID != "123" || !f.archive.orders[0].Total.Equal(decimal.NewFromInt(12000)) {
		t.Fatalf("unexpected archive: %+v", f.archive.orders)
	}
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
	f.svc.Abandon(ctx, f.sess)
	if f.order() != nil {
		t.Fatalf("abandon should drop the order")
	}
}

type downRestaurant struct{}

func (downRestaurant) Settings() (domain.Settings, error) {
	return domain.Settings{}, errors.New("connection refused")
}

func TestDispatchSurfacesSettingsFailure(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)
	f.svc.Restaurant = downRestaurant{}
	f.fill(t)
	_, _ = f.svc.Submit(ctx, f.sess, domain.ModePickup, ana, "")
	_, _ = f.svc.Reconcile(ctx, f.sess, ReturnParams{Status: "approved"})

	_, err := f.svc.Dispatch(ctx, f.sess)
	var nf ErrNotFound
	if err == nil || errors.As(err, &nf) {
		t.Fatalf("want a non-404 error, got %v", err)
	}
	if f.order() == nil {
		t.Fatalf("order must survive a failed dispatch")
	}
}

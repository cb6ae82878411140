package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/infrastructure/mercadopago"
	"storefront-backend/internal/ordering"
)

type PaymentProvider interface {
	CreatePreference(ctx context.Context, items []mercadopago.Item) (mercadopago.Preference, error)
}

type OrderArchive interface {
	PutArchived(*domain.ArchivedOrder) error
	ListArchived(page, pageSize int) ([]domain.ArchivedOrder, int, error)
}

type RestaurantInfo interface {
	Settings() (domain.Settings, error)
}

// CheckoutService walks a session from cart to payment to the kitchen handoff.
type CheckoutService struct {
	Payments      PaymentProvider
	Archive       OrderArchive
	Restaurant    RestaurantInfo
	RedirectDelay time.Duration
	Log           *slog.Logger
}

func (s *CheckoutService) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Submit validates the checkout form against the cart and, if it passes,
// promotes it to a complete order. Invalid input leaves state untouched.
func (s *CheckoutService) Submit(ctx context.Context, sess *Session, mode domain.OrderMode, data domain.CustomerData, notes string) (*domain.OrderState, error) {
	var out *domain.OrderState
	err := sess.Do(func(m *OrderManager) error {
		res := ordering.Validate(m.Candidate(mode, data, notes))
		if !res.Valid {
			return &ValidationError{Result: res}
		}
		out = m.CreateCompleteOrder(mode, data, notes)
		return nil
	})
	return out, err
}

type PaymentRedirect struct {
	RedirectURL  string `json:"redirectUrl"`
	PreferenceID string `json:"preferenceId"`
}

// StartPayment asks the provider for a checkout preference. Only one request
// per session may be in flight. On failure the order is not modified.
func (s *CheckoutService) StartPayment(ctx context.Context, sess *Session) (*PaymentRedirect, error) {
	if !sess.paying.CompareAndSwap(false, true) {
		return nil, ErrPaymentInProgress
	}
	defer sess.paying.Store(false)

	var items []mercadopago.Item
	err := sess.Do(func(m *OrderManager) error {
		if m.order == nil {
			return ErrOrderNotFound
		}
		if len(m.cart) == 0 {
			return ErrEmptyCart
		}
		for _, it := range m.cart {
			items = append(items, mercadopago.Item{
				ID:        string(it.ID),
				Title:     it.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.Price,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pref, err := s.Payments.CreatePreference(ctx, items)
	if err != nil {
		s.log().ErrorContext(ctx, "create preference failed", "session", sess.ID, "error", err)
		return nil, paymentError(err)
	}

	err = sess.Do(func(m *OrderManager) error {
		if !m.MergePaymentInfo(domain.PaymentInfo{PreferenceID: pref.ID}) {
			return ErrOrderNotFound
		}
		m.Persist(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().InfoContext(ctx, "payment preference created", "session", sess.ID, "preference_id", pref.ID)
	return &PaymentRedirect{RedirectURL: pref.InitPoint, PreferenceID: pref.ID}, nil
}

func paymentError(err error) *PaymentError {
	var pe *mercadopago.ProviderError
	if errors.As(err, &pe) {
		return &PaymentError{Message: pe.Message, Details: pe.Details}
	}
	return &PaymentError{Message: "Error creating preference", Details: err.Error()}
}

// ReturnParams are the query indicators the payment provider appends on the way back.
type ReturnParams struct {
	Result    string `form:"result"`
	PaymentID string `form:"payment_id"`
	Status    string `form:"status"`
}

type ResultView struct {
	Status          string             `json:"status"`
	Title           string             `json:"title"`
	Message         string             `json:"message,omitempty"`
	Detail          string             `json:"detail,omitempty"`
	DispatchEnabled bool               `json:"dispatchEnabled"`
	PaymentID       string             `json:"paymentId,omitempty"`
	Order           *domain.OrderState `json:"order"`
}

// Reconcile applies the provider's return indicators to the session's order.
// The status and payment id are taken as given; nothing is checked with the provider.
func (s *CheckoutService) Reconcile(ctx context.Context, sess *Session, p ReturnParams) (*ResultView, error) {
	if p.Result == "" && p.Status == "" {
		return nil, ErrMalformedReturn
	}
	var view ResultView
	err := sess.Do(func(m *OrderManager) error {
		if m.order == nil {
			m.Restore(ctx)
		}
		if m.order == nil {
			return ErrOrderNotFound
		}
		if p.Status != "" {
			m.MergePaymentInfo(domain.PaymentInfo{PaymentID: p.PaymentID, Status: domain.PaymentStatus(p.Status)})
		}
		status := p.Status
		if status == "" {
			status = string(m.order.PaymentStatus())
		}
		paymentID := p.PaymentID
		if paymentID == "" && m.order.MercadoPago != nil {
			paymentID = m.order.MercadoPago.PaymentID
		}
		view = BuildResultView(status, paymentID, m.Order())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// BuildResultView maps a payment status to what the result screen shows.
// Unrecognized statuses get their own "unknown" presentation.
func BuildResultView(status, paymentID string, order *domain.OrderState) ResultView {
	v := ResultView{Status: status, PaymentID: paymentID, Order: order}
	switch domain.PaymentStatus(status) {
	case domain.PaymentApproved:
		v.Title = "¡Pago Confirmado!"
		v.DispatchEnabled = true
		return v
	case domain.PaymentPending:
		v.Title = "Pago Pendiente"
		v.Message = "⏳ Tu pago está pendiente de confirmación"
	case domain.PaymentRejected:
		v.Title = "Pago Rechazado"
		v.Message = "❌ Hubo un problema con el pago"
	default:
		v.Status = "unknown"
		v.Title = "Estado Desconocido"
		v.Message = "❌ Hubo un problema con el pago"
	}
	v.Detail = "El pedido no será enviado hasta que el pago sea aprobado"
	return v
}

type DispatchResult struct {
	WhatsAppURL     string `json:"whatsappUrl"`
	Message         string `json:"message"`
	Notice          string `json:"notice"`
	RedirectTo      string `json:"redirectTo"`
	RedirectAfterMs int64  `json:"redirectAfterMs"`
}

// Dispatch hands an approved order to the kitchen over WhatsApp and ends the session's order.
func (s *CheckoutService) Dispatch(ctx context.Context, sess *Session) (*DispatchResult, error) {
	settings, err := s.Restaurant.Settings()
	if err != nil {
		return nil, err
	}
	var out DispatchResult
	err = sess.Do(func(m *OrderManager) error {
		o := m.Order()
		if o == nil {
			return ErrOrderNotFound
		}
		if o.PaymentStatus() != domain.PaymentApproved {
			return ErrPaymentNotApproved
		}
		msg := ordering.FormatMessage(*o)
		out = DispatchResult{
			WhatsAppURL:     ordering.WhatsAppURL(settings.Phone, msg),
			Message:         msg,
			Notice:          "Pedido enviado a la cocina ✅",
			RedirectTo:      "/",
			RedirectAfterMs: s.redirectDelay().Milliseconds(),
		}
		s.archive(ctx, sess.ID, o)
		m.Clear(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CheckoutService) redirectDelay() time.Duration {
	if s.RedirectDelay <= 0 {
		return 2 * time.Second
	}
	return s.RedirectDelay
}

func (s *CheckoutService) archive(ctx context.Context, sessionID string, o *domain.OrderState) {
	if s.Archive == nil {
		return
	}
	rec := &domain.ArchivedOrder{
		ID:           uuid.NewString(),
		Date:         time.Now().UTC(),
		Total:        o.Total,
		Items:        o.Items,
		Mode:         o.Mode,
		CustomerName: o.CustomerData.Name,
	}
	if o.MercadoPago != nil {
		rec.PaymentID = o.MercadoPago.PaymentID
	}
	if err := s.Archive.PutArchived(rec); err != nil {
		s.log().WarnContext(ctx, "archive order failed", "session", sessionID, "error", err)
	}
}

// Abandon drops the session's cart and order at the shopper's request.
func (s *CheckoutService) Abandon(ctx context.Context, sess *Session) {
	_ = sess.Do(func(m *OrderManager) error {
		m.Clear(ctx)
		return nil
	})
}

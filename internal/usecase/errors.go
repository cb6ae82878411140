package usecase

import "storefront-backend/internal/ordering"

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrConflict string

func (e ErrConflict) Error() string { return string(e) }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }

type ErrUnauthorized string

func (e ErrUnauthorized) Error() string { return string(e) }

var (
	ErrOrderNotFound      = ErrNotFound("order")
	ErrItemNotFound       = ErrNotFound("menu item")
	ErrEmptyCart          = ErrBadRequest("cart is empty")
	ErrMalformedReturn    = ErrBadRequest("malformed payment return")
	ErrPaymentInProgress  = ErrConflict("payment already in progress")
	ErrPaymentNotApproved = ErrConflict("payment not approved")
	ErrBadCredentials     = ErrUnauthorized("invalid credentials")
)

// ValidationError carries the field errors that blocked checkout.
type ValidationError struct {
	Result ordering.Result
}

func (e *ValidationError) Error() string { return "order validation failed" }

// PaymentError is what the shopper sees when the payment provider could not start a checkout.
type PaymentError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *PaymentError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

package orders

import (
	"errors"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentNotConfirmed means the gateway does not report the charge
	// as succeeded.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by gateway")
)

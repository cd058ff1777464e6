package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrBusy is returned by Guard.Do while another action is in flight.
	ErrBusy = errors.New("dashboard: an action is already in progress")

	ErrNotLoggedIn = errors.New("dashboard: not logged in")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// SessionEnded reports whether the server rejected the session itself.
func (e *APIError) SessionEnded() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// PaymentNotRecordedError means the gateway charged the customer but the
// API did not store the payment. It must not be retried automatically; the
// customer has to contact support with the transaction ID.
type PaymentNotRecordedError struct {
	TransactionID string
	Err           error
}

func (e *PaymentNotRecordedError) Error() string {
	return fmt.Sprintf("payment %s was charged but not recorded, contact support: %v", e.TransactionID, e.Err)
}

func (e *PaymentNotRecordedError) Unwrap() error { return e.Err }

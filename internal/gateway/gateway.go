package gateway

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no payment provider key is set.
	ErrNotConfigured = errors.New("payment gateway not configured")
	ErrNotSucceeded  = errors.New("payment has not succeeded")
)

type Intent struct {
	ID           string
	ClientSecret string
}

// Confirmation is what the provider reports about a completed charge.
// Amount is in whole currency units, as prices are stored.
type Confirmation struct {
	TransactionID string
	Amount        int64
	Succeeded     bool
	Metadata      map[string]string
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	Confirm(ctx context.Context, transactionID string) (*Confirmation, error)
}

// Disabled is used when no provider is configured. Intents cannot be
// created and payments are recorded without provider confirmation.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, int64, string, map[string]string) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Confirm(context.Context, string) (*Confirmation, error) {
	return nil, ErrNotConfigured
}

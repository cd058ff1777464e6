package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// minorUnits converts whole currency units to the provider's smallest unit.
const minorUnits = 100

type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Stripe{api: api}
}

func (s *Stripe) CreateIntent(
	ctx context.Context,
	amount int64,
	currency string,
	metadata map[string]string,
) (*Intent, error) {
	const op = "gateway.Stripe.CreateIntent"

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount * minorUnits),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) Confirm(ctx context.Context, transactionID string) (*Confirmation, error) {
	const op = "gateway.Stripe.Confirm"

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(transactionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Confirmation{
		TransactionID: pi.ID,
		Amount:        pi.Amount / minorUnits,
		Succeeded:     pi.Status == stripe.PaymentIntentStatusSucceeded,
		Metadata:      pi.Metadata,
	}, nil
}

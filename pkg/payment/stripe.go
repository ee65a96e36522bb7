package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe is a Gateway backed by Stripe PaymentIntents.
type Stripe struct {
	api *client.API
}

// NewStripe returns a Stripe gateway using secretKey.
func NewStripe(secretKey string) (*Stripe, error) {
	if secretKey == "" {
		return nil, errors.New("payment: stripe secret key is empty")
	}
	return &Stripe{api: client.New(secretKey, nil)}, nil
}

// CreateIntent creates a card-only PaymentIntent and returns its client secret.
func (s *Stripe) CreateIntent(ctx context.Context, amountMinor int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: create intent: %w", err)
	}
	return pi.ClientSecret, nil
}

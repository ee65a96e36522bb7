// Package payment talks to the card processor. The server never sees card
// data: it only asks the processor for a client secret that the browser
// uses to confirm the payment.
package payment

import (
	"context"
	"errors"
	"math"
)

// ErrInvalidAmount is returned for non-positive or non-finite amounts.
var ErrInvalidAmount = errors.New("payment: amount must be positive")

// Gateway mints client secrets for payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (clientSecret string, err error)
}

// MinorUnits converts a decimal price into the smallest currency unit,
// rounding to the nearest cent (12.5 -> 1250, 19.999 -> 2000).
func MinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	amount := int64(math.Round(price * 100))
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("payment: no gateway configured")

// Disabled is the gateway used when no processor key is set.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, int64, string) (string, error) {
	return "", ErrDisabled
}

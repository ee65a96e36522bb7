package payment

import (
	"context"
	"fmt"
	"sync"
)

// Intent is one call recorded by Fake.
type Intent struct {
	Amount   int64
	Currency string
}

// Fake is an in-process Gateway for tests and local runs without Stripe
// credentials. It returns deterministic secrets and records every call.
type Fake struct {
	mu      sync.Mutex
	intents []Intent
	Err     error
}

func (f *Fake) CreateIntent(_ context.Context, amountMinor int64, currency string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	f.intents = append(f.intents, Intent{Amount: amountMinor, Currency: currency})
	return fmt.Sprintf("pi_fake_%d_secret_%s", len(f.intents), currency), nil
}

// Intents returns a copy of the recorded calls.
func (f *Fake) Intents() []Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Intent(nil), f.intents...)
}

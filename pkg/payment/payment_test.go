package payment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	cases := map[float64]int64{
		12.5:   1250,
		19.99:  1999,
		0.29:   29,
		19.999: 2000,
		1:      100,
	}
	for price, want := range cases {
		got, err := MinorUnits(price)
		require.NoError(t, err, price)
		assert.Equal(t, want, got, price)
	}
}

func TestMinorUnitsRejects(t *testing.T) {
	for _, price := range []float64{0, -1, 0.004, math.NaN(), math.Inf(1)} {
		_, err := MinorUnits(price)
		assert.ErrorIs(t, err, ErrInvalidAmount, price)
	}
}

func TestFakeRecordsIntents(t *testing.T) {
	f := &Fake{}
	secret, err := f.CreateIntent(context.Background(), 1250, "usd")
	require.NoError(t, err)
	assert.Equal(t, "pi_fake_1_secret_usd", secret)
	assert.Equal(t, []Intent{{Amount: 1250, Currency: "usd"}}, f.Intents())

	f.Err = errors.New("declined")
	_, err = f.CreateIntent(context.Background(), 1, "usd")
	assert.Error(t, err)
}

func TestNewStripeNeedsKey(t *testing.T) {
	_, err := NewStripe("")
	assert.Error(t, err)

	s, err := NewStripe("sk_test_123")
	require.NoError(t, err)
	assert.NotNil(t, s.api)
}

func TestDisabledRefuses(t *testing.T) {
	_, err := Disabled{}.CreateIntent(context.Background(), 100, "usd")
	assert.ErrorIs(t, err, ErrDisabled)
}

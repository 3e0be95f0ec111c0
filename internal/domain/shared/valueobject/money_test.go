package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	t.Run("addition keeps decimal exactness", func(t *testing.T) {
		a, err := NewMoneyFromString("0.10")
		require.NoError(t, err)
		b, err := NewMoneyFromString("0.20")
		require.NoError(t, err)

		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.RequireFromString("0.30")))
	})

	t.Run("currency mismatch is rejected", func(t *testing.T) {
		usd := NewMoneyUSD(decimal.NewFromInt(10))
		eur, err := NewMoney(decimal.NewFromInt(10), EUR)
		require.NoError(t, err)

		_, err = usd.Add(eur)
		assert.Error(t, err)
	})

	t.Run("subtraction can go negative", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromInt(5))
		b := NewMoneyUSD(decimal.NewFromInt(8))

		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.IsNegative())
	})
}

func TestMoneyScanValue(t *testing.T) {
	t.Run("database round-trip preserves the amount", func(t *testing.T) {
		original, err := NewMoneyFromString("123.4567")
		require.NoError(t, err)

		value, err := original.Value()
		require.NoError(t, err)

		var restored Money
		require.NoError(t, restored.Scan(value))
		assert.True(t, restored.Equal(original))
		assert.Equal(t, DefaultCurrency, restored.Currency())
	})

	t.Run("nil scans to zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("string and byte inputs scan", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("42.50"))
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("42.50")))

		var n Money
		require.NoError(t, n.Scan([]byte("0.0001")))
		assert.True(t, n.Amount().Equal(decimal.RequireFromString("0.0001")))
	})
}

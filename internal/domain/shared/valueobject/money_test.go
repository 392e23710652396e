package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid money", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), TND)
		require.NoError(t, err)
		assert.Equal(t, TND, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("empty currency rejected", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoneyTNDFromFloat(1000.500)
	b := NewMoneyTNDFromFloat(250.250)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(1250.750)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(750.250)))
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	a := NewMoneyTNDFromFloat(10)
	b, err := NewMoney(decimal.NewFromInt(10), EUR)
	require.NoError(t, err)

	_, err = a.Add(b)
	assert.Error(t, err)
	_, err = a.Subtract(b)
	assert.Error(t, err)
	_, err = a.LessThan(b)
	assert.Error(t, err)
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyTNDFromFloat(400)
	big := NewMoneyTNDFromFloat(1000)

	less, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := big.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	gte, err = big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)
}

func TestMoney_RoundToMillime(t *testing.T) {
	m := NewMoneyTNDFromFloat(10.12345)
	assert.Equal(t, "10.123 TND", m.RoundToMillime().String())
}

func TestMoney_Zero(t *testing.T) {
	z := ZeroTND()
	assert.True(t, z.IsZero())
	assert.False(t, z.IsPositive())
	assert.False(t, z.IsNegative())
}

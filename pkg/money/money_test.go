package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		european bool
		want     int64
	}{
		{"plain decimal", "100.50", false, 10050},
		{"thousands separator", "1,234.56", false, 123456},
		{"european format", "1.234,56", true, 123456},
		{"currency symbol", "€1.234,56", true, 123456},
		{"whitespace", " 42.00 ", false, 4200},
		{"negative", "-15.25", false, -1525},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewFromString(tt.input, EUR, tt.european)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}

	t.Run("invalid amount", func(t *testing.T) {
		_, err := NewFromString("not a number", USD, false)
		assert.Error(t, err)
	})
}

func TestArithmetic(t *testing.T) {
	a := New(10050, USD)
	b := New(2550, USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(12600), sum.Amount())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), diff.Amount())

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(New(100, EUR))
		assert.Error(t, err)
	})
}

func TestToDecimal(t *testing.T) {
	m := New(123456, USD)
	assert.True(t, m.ToDecimal().Equal(decimal.RequireFromString("1234.56")))

	var nilMoney *Money
	assert.True(t, nilMoney.ToDecimal().IsZero())
	assert.True(t, nilMoney.IsZero())
}

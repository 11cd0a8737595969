package statement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestVerifyBalances(t *testing.T) {
	txs := []Transaction{
		{Description: "SALARY", Credit: dec("2500.00")},
		{Description: "RENT", Debit: dec("1200.00")},
		{Description: "GROCERIES", Debit: dec("89.45")},
	}

	t.Run("balances reconcile", func(t *testing.T) {
		summary := Summary{
			OpeningBalance: decPtr("1000.00"),
			ClosingBalance: decPtr("2210.55"),
		}
		check := VerifyBalances(summary, txs, dec("0.01"))
		assert.True(t, check.OK)
		assert.False(t, check.Skipped)
		assert.True(t, check.TotalDebits.Equal(dec("1289.45")))
		assert.True(t, check.TotalCredits.Equal(dec("2500.00")))
	})

	t.Run("within tolerance", func(t *testing.T) {
		summary := Summary{
			OpeningBalance: decPtr("1000.00"),
			ClosingBalance: decPtr("2210.56"),
		}
		check := VerifyBalances(summary, txs, dec("0.01"))
		assert.True(t, check.OK)
	})

	t.Run("outside tolerance", func(t *testing.T) {
		summary := Summary{
			OpeningBalance: decPtr("1000.00"),
			ClosingBalance: decPtr("2215.00"),
		}
		check := VerifyBalances(summary, txs, dec("0.01"))
		assert.False(t, check.OK)
		assert.True(t, check.Delta.Equal(dec("4.45")))
	})

	t.Run("missing balance skips check", func(t *testing.T) {
		check := VerifyBalances(Summary{OpeningBalance: decPtr("1000.00")}, txs, dec("0.01"))
		assert.True(t, check.OK)
		assert.True(t, check.Skipped)
	})
}

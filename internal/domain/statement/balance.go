package statement

import "github.com/shopspring/decimal"

// BalanceCheck is the result of verifying the statement balance equation.
type BalanceCheck struct {
	OK bool
	// Delta is |closing - (opening + credits - debits)|. Zero when either
	// balance is missing and the check is skipped.
	Delta        decimal.Decimal
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Skipped      bool
}

// VerifyBalances checks closing ≈ opening + Σcredits − Σdebits within the given
// absolute tolerance. When either balance is absent the check is skipped and
// reported as OK, since many statement layouts omit one of the two.
func VerifyBalances(summary Summary, txs []Transaction, tolerance decimal.Decimal) BalanceCheck {
	check := BalanceCheck{OK: true}

	for _, tx := range txs {
		check.TotalDebits = check.TotalDebits.Add(tx.Debit)
		check.TotalCredits = check.TotalCredits.Add(tx.Credit)
	}

	if summary.OpeningBalance == nil || summary.ClosingBalance == nil {
		check.Skipped = true
		return check
	}

	expected := summary.OpeningBalance.Add(check.TotalCredits).Sub(check.TotalDebits)
	check.Delta = summary.ClosingBalance.Sub(expected).Abs()
	check.OK = check.Delta.LessThanOrEqual(tolerance)
	return check
}

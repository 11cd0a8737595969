// Package statement defines the transaction records produced by parsing a bank
// statement and the arithmetic checks applied to them.
package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one parsed statement line.
type Transaction struct {
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference,omitempty"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	// Balance is the running balance after this transaction, when the
	// statement layout carries one.
	Balance  *decimal.Decimal `json:"balance,omitempty"`
	Currency string           `json:"currency,omitempty"`
}

// Summary carries the statement-level figures used for reconciliation.
type Summary struct {
	OpeningBalance *decimal.Decimal `json:"openingBalance,omitempty"`
	ClosingBalance *decimal.Decimal `json:"closingBalance,omitempty"`
	Currency       string           `json:"currency,omitempty"`
}

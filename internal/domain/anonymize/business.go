package anonymize

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// businessKeywords is the curated exclusion list for name detection. A name
// candidate containing any of these stays legible so merchant descriptors
// survive for reconciliation. Grouped: banks, merchants, payment rails,
// transaction vocabulary.
var businessKeywords = []string{
	// Banks and financial institutions.
	"BANK", "HDFC", "ICICI", "SBI", "AXIS", "KOTAK", "HSBC", "CITI",
	"CHASE", "BARCLAYS", "SANTANDER", "WELLS FARGO", "REVOLUT", "N26",
	"MONZO", "WISE", "CREDIT UNION", "BUILDING SOCIETY",

	// Large merchants.
	"AMAZON", "WALMART", "FLIPKART", "TARGET", "COSTCO", "TESCO", "ALDI",
	"LIDL", "IKEA", "UBER", "LYFT", "AIRBNB", "NETFLIX", "SPOTIFY",
	"STARBUCKS", "MCDONALD", "APPLE", "GOOGLE", "MICROSOFT", "STEAM",
	"ZOMATO", "SWIGGY",

	// Payment processors and rails.
	"PAYPAL", "STRIPE", "SQUARE", "KLARNA", "VISA", "MASTERCARD", "AMEX",
	"UPI", "NEFT", "RTGS", "IMPS", "ACH", "SEPA", "SWIFT", "BACS", "IBAN",

	// Transaction vocabulary that shows up in all-caps runs.
	"PAYMENT", "TRANSFER", "DEPOSIT", "WITHDRAWAL", "PURCHASE", "REFUND",
	"REVERSAL", "INTEREST", "SALARY", "PAYROLL", "DIVIDEND", "ATM", "POS",
	"EMI", "FEE", "CHARGE", "DEBIT", "CREDIT", "BALANCE", "STANDING ORDER",
	"DIRECT DEBIT", "CHEQUE", "CASH",

	// Legal suffixes.
	"LTD", "LIMITED", "LLC", "INC", "CORP", "PLC", "GMBH", "PVT",
}

// businessMatcher answers "does this name candidate look like a business?"
// with a single Aho-Corasick pass instead of len(keywords) substring scans.
type businessMatcher struct {
	matcher *ahocorasick.Matcher
}

func newBusinessMatcher() *businessMatcher {
	return &businessMatcher{matcher: ahocorasick.NewStringMatcher(businessKeywords)}
}

func (b *businessMatcher) isBusiness(candidate string) bool {
	hits := b.matcher.Match([]byte(strings.ToUpper(candidate)))
	return len(hits) > 0
}

// Package anonymize pseudonymizes personal data in extracted statement text.
// Detection is an ordered cascade of detect→replace stages; ordering is
// load-bearing because later stages use less specific patterns and must not
// re-match output of earlier ones.
package anonymize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/statementdesk/ingest/internal/domain/statement"
)

// accountMask is the constant replacement for detected account tails and
// fully redacted account fields.
const accountMask = "****XXXX"

// MaskOptions toggles individual detection stages. The zero value disables
// everything; use DefaultMaskOptions for the all-enabled default.
type MaskOptions struct {
	Names     bool
	Emails    bool
	Phones    bool
	Accounts  bool
	Addresses bool // reserved; no address stage is implemented yet
	IDs       bool
}

// DefaultMaskOptions enables every stage.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{
		Names:     true,
		Emails:    true,
		Phones:    true,
		Accounts:  true,
		Addresses: true,
		IDs:       true,
	}
}

// MaskResult is the per-value outcome of a masking pass.
type MaskResult struct {
	Original string   `json:"originalValue"`
	Masked   string   `json:"maskedValue"`
	Detected bool     `json:"piiDetected"`
	Types    []string `json:"piiTypes,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)

	// Loose candidate; the handler verifies the digit count.
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`)

	// Tails must contain a digit so a label followed by a plain word
	// ("account statement") is not treated as a number.
	accountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(a/?c(?:count)?\s*(?:no\.?|number|#)?\s*[:\-]?\s*)([A-Za-z]{0,3}\d[A-Za-z0-9]{3,})`),
		regexp.MustCompile(`(?i)\b(card\s*(?:no\.?|number|#)?\s*[:\-]?\s*)([\dXx*][\dXx*\s\-]{8,})`),
		regexp.MustCompile(`(?i)\b((?:ref(?:erence)?|txn|transaction)\s*(?:no\.?|number|#|id)?\s*[:\-]?\s*)([A-Za-z]{0,3}\d[A-Za-z0-9]{3,})`),
		regexp.MustCompile(`(?i)\b(order\s*(?:no\.?|number|#|id)?\s*[:\-]?\s*)([A-Za-z]{0,3}\d[A-Za-z0-9]{3,})`),
	}
	// A sequence someone already half-masked upstream still counts as a
	// detected account.
	partialMaskPattern = regexp.MustCompile(`\*{2,}\d{2,}`)

	idPattern = regexp.MustCompile(`(?i)\b((?:ssn|social security|tax\s*id|pan|passport|national\s*id|aadhaar|nino)\s*(?:no\.?|number|#)?\s*[:\-]?\s*)([A-Za-z]{0,5}\d[A-Za-z0-9\-]{2,})`)

	namePrefixPattern    = regexp.MustCompile(`\b(FROM|TO|FOR|BY|ATTN)([:\s]\s*)([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)+)`)
	nameHonorificPattern = regexp.MustCompile(`\b((?:Mr|Mrs|Ms|Dr|Prof)\.?\s+)([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)`)
	nameAllCapsPattern   = regexp.MustCompile(`\b[A-Z]{2,}(?:\s+[A-Z]{2,})+\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Masker is a session-scoped anonymization engine. The alias table keeps
// pseudonyms consistent within one document session; Reset starts a new one.
type Masker struct {
	mu       sync.Mutex
	aliases  map[string]string
	counter  int
	business *businessMatcher
	logger   *slog.Logger
}

// NewMasker creates a masker with an empty alias table.
func NewMasker(logger *slog.Logger) *Masker {
	return &Masker{
		aliases:  make(map[string]string),
		business: newBusinessMatcher(),
		logger:   logger,
	}
}

// Reset clears the alias table and pseudonym counter. Call once at the start
// of each export/document session so pseudonyms never leak across unrelated
// documents.
func (m *Masker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aliases = make(map[string]string)
	m.counter = 0
}

// Mask runs the enabled stages over text in fixed order: emails, phones,
// account/reference numbers, generic IDs, names. A pattern that fails to
// match leaves its text unmasked; masking is best-effort and never errors.
func (m *Masker) Mask(text string, opts MaskOptions) MaskResult {
	result := MaskResult{Original: text, Masked: text}

	stages := []struct {
		name    string
		enabled bool
		apply   func(string) string
	}{
		{"email", opts.Emails, m.maskEmails},
		{"phone", opts.Phones, m.maskPhones},
		{"account", opts.Accounts, m.maskAccounts},
		{"id", opts.IDs, m.maskIDs},
		{"name", opts.Names, m.maskNames},
	}

	for _, stage := range stages {
		if !stage.enabled {
			continue
		}
		masked := stage.apply(result.Masked)
		if masked != result.Masked {
			result.Masked = masked
			result.Detected = true
			result.Types = append(result.Types, stage.name)
		}
	}

	if result.Detected && m.logger != nil {
		m.logger.Debug("pii masked", slog.Any("types", result.Types))
	}
	return result
}

// MaskTransactions resets the session state once, then masks every
// transaction's description. Account-number fields are redacted outright to
// the constant mask; unlike description-embedded numbers they keep no tail.
func (m *Masker) MaskTransactions(txs []statement.Transaction, opts MaskOptions) []statement.Transaction {
	m.Reset()

	out := make([]statement.Transaction, len(txs))
	for i, tx := range txs {
		masked := tx
		masked.Description = m.Mask(tx.Description, opts).Masked
		if opts.Accounts && tx.AccountNumber != "" {
			masked.AccountNumber = accountMask
		}
		out[i] = masked
	}
	return out
}

func (m *Masker) maskEmails(text string) string {
	return emailPattern.ReplaceAllString(text, "***@$1")
}

func (m *Masker) maskPhones(text string) string {
	return phonePattern.ReplaceAllStringFunc(text, func(candidate string) string {
		if strings.Contains(candidate, "*") {
			return candidate
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, candidate)
		if len(digits) < 10 {
			return candidate
		}
		return "***-***-" + digits[len(digits)-4:]
	})
}

func (m *Masker) maskAccounts(text string) string {
	for _, pattern := range accountPatterns {
		text = pattern.ReplaceAllString(text, "${1}"+accountMask)
	}
	return partialMaskPattern.ReplaceAllString(text, accountMask)
}

func (m *Masker) maskIDs(text string) string {
	return idPattern.ReplaceAllString(text, "${1}"+accountMask)
}

func (m *Masker) maskNames(text string) string {
	text = namePrefixPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := namePrefixPattern.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		if m.business.isBusiness(parts[3]) {
			return match
		}
		return parts[1] + parts[2] + m.pseudonym(parts[3])
	})

	text = nameHonorificPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := nameHonorificPattern.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		if m.business.isBusiness(parts[2]) {
			return match
		}
		return parts[1] + m.pseudonym(parts[2])
	})

	return nameAllCapsPattern.ReplaceAllStringFunc(text, func(candidate string) string {
		if m.business.isBusiness(candidate) {
			return candidate
		}
		return m.pseudonym(candidate)
	})
}

// pseudonym returns the stable alias for a detected name, allocating the next
// sequential one on first sight of a normalized name.
func (m *Masker) pseudonym(name string) string {
	normalized := whitespacePattern.ReplaceAllString(strings.ToUpper(strings.TrimSpace(name)), " ")

	m.mu.Lock()
	defer m.mu.Unlock()

	if alias, ok := m.aliases[normalized]; ok {
		return alias
	}
	m.counter++
	alias := fmt.Sprintf("[Person_%03d]", m.counter)
	m.aliases[normalized] = alias
	return alias
}

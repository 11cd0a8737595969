package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Quality scoring thresholds. The scorer starts at 100 and applies ordered
// deductions; a final score below fallbackScoreThreshold recommends the OCR
// path.
const (
	fallbackScoreThreshold = 40
	minTextChars           = 50
	shortTextScore         = 20
)

var dateRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`),
	regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2}\b`),
}

var amountRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\d[\d,]*\.\d{2}\b`),
	regexp.MustCompile(`[$€£₹¥]\s*\d`),
}

var (
	lowerWordPattern = regexp.MustCompile(`^[a-z]{2,15}$`)
	codePattern      = regexp.MustCompile(`^[A-Za-z0-9]{4,20}$`)
)

// financialVocab is the statement vocabulary that counts as valid even when a
// token is upper-cased or abbreviated.
var financialVocab = map[string]struct{}{
	"account": {}, "amount": {}, "atm": {}, "balance": {}, "bank": {},
	"branch": {}, "card": {}, "cash": {}, "charge": {}, "cheque": {},
	"closing": {}, "credit": {}, "date": {}, "debit": {}, "deposit": {},
	"fee": {}, "imps": {}, "interest": {}, "neft": {}, "opening": {},
	"payment": {}, "purchase": {}, "reference": {}, "refund": {}, "rtgs": {},
	"salary": {}, "statement": {}, "total": {}, "transaction": {},
	"transfer": {}, "upi": {}, "withdrawal": {},
}

// allowedPunct is the punctuation that does not count as a special character.
const allowedPunct = `.,:;!?()-/&@#$%'"+*=_`

// ScoreQuality computes a 0-100 confidence score over the extracted fragments
// and decides whether extraction quality is too poor to trust.
func ScoreQuality(fragments []TextFragment) QualityReport {
	if len(fragments) == 0 {
		return QualityReport{
			Score:               0,
			ShouldFallbackToOCR: true,
			Issues:              []string{"No text elements extracted"},
		}
	}

	var sb strings.Builder
	for _, f := range fragments {
		sb.WriteString(f.Text)
		sb.WriteByte(' ')
	}
	text := strings.TrimSpace(sb.String())

	metrics := QualityMetrics{TotalChars: len([]rune(text))}
	if metrics.TotalChars < minTextChars {
		return QualityReport{
			Score:               shortTextScore,
			ShouldFallbackToOCR: true,
			Issues:              []string{"Very little text extracted"},
			Metrics:             metrics,
		}
	}

	score := 100
	var issues []string

	// Special-character ratio.
	metrics.SpecialCharRatio = specialCharRatio(text)
	switch {
	case metrics.SpecialCharRatio > 0.4:
		score -= 40
	case metrics.SpecialCharRatio > 0.2:
		score -= 20
	case metrics.SpecialCharRatio > 0.1:
		score -= 10
	}
	if metrics.SpecialCharRatio > 0.1 {
		issues = append(issues, fmt.Sprintf("High ratio of special characters (%.1f%%)", metrics.SpecialCharRatio*100))
	}

	// Valid-word ratio.
	tokens := strings.Fields(text)
	metrics.ValidWordRatio = validWordRatio(tokens)
	switch {
	case metrics.ValidWordRatio < 0.2:
		score -= 20
		issues = append(issues, "Very few recognizable words in extracted text")
	case metrics.ValidWordRatio < 0.4:
		score -= 10
		issues = append(issues, "Few recognizable words in extracted text")
	case metrics.ValidWordRatio > 0.6:
		score += 10
	}

	// Date-pattern absence.
	metrics.HasDatePattern = matchesAny(dateRegexes, text)
	if !metrics.HasDatePattern {
		score -= 15
		issues = append(issues, "No date patterns found")
	}

	// Numeric/currency-pattern absence.
	metrics.HasAmountPattern = matchesAny(amountRegexes, text)
	if !metrics.HasAmountPattern {
		score -= 10
		issues = append(issues, "No numeric or currency amounts found")
	}

	// Unicode block mixing. Heavy mixing in short text is a strong corrupted
	// text-layer signal.
	metrics.UnicodeBlocks = countUnicodeBlocks(text)
	if metrics.UnicodeBlocks > 3 && metrics.TotalChars < 200 {
		mixRatio := float64(metrics.UnicodeBlocks-2) / float64(metrics.UnicodeBlocks)
		switch {
		case mixRatio > 0.3:
			score -= 20
			issues = append(issues, "Mixed unicode blocks suggest a corrupted text layer")
		case mixRatio > 0.15:
			score -= 10
			issues = append(issues, "Mixed unicode blocks suggest a corrupted text layer")
		}
	}

	// Average word length.
	metrics.AvgWordLength = avgWordLength(tokens)
	if metrics.AvgWordLength < 2 || metrics.AvgWordLength > 20 {
		score -= 15
		issues = append(issues, fmt.Sprintf("Unusual average word length (%.1f)", metrics.AvgWordLength))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return QualityReport{
		Score:               score,
		ShouldFallbackToOCR: score < fallbackScoreThreshold,
		Issues:              issues,
		Metrics:             metrics,
	}
}

func specialCharRatio(text string) float64 {
	total := 0
	special := 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune(allowedPunct, r) {
			continue
		}
		special++
	}
	if total == 0 {
		return 0
	}
	return float64(special) / float64(total)
}

// validWordRatio counts tokens that look like real statement content: known
// financial vocabulary, plain lowercase words, or alphanumeric codes.
func validWordRatio(tokens []string) float64 {
	counted := 0
	valid := 0
	for _, tok := range tokens {
		if len([]rune(tok)) < 2 {
			continue
		}
		counted++

		cleaned := strings.Trim(tok, allowedPunct)
		if cleaned == "" {
			continue
		}
		if _, ok := financialVocab[strings.ToLower(cleaned)]; ok {
			valid++
			continue
		}
		if lowerWordPattern.MatchString(cleaned) {
			valid++
			continue
		}
		if codePattern.MatchString(cleaned) {
			valid++
		}
	}
	if counted == 0 {
		return 0
	}
	return float64(valid) / float64(counted)
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func avgWordLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, tok := range tokens {
		total += len([]rune(tok))
	}
	return float64(total) / float64(len(tokens))
}

func countUnicodeBlocks(text string) int {
	seen := map[string]struct{}{}
	for _, r := range text {
		seen[unicodeBlock(r)] = struct{}{}
	}
	return len(seen)
}

func unicodeBlock(r rune) string {
	switch {
	case r < 0x80:
		return "basic-latin"
	case r <= 0x024F:
		return "latin-extended"
	case r >= 0x0900 && r <= 0x097F:
		return "devanagari"
	case (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3000 && r <= 0x30FF):
		return "cjk"
	case r >= 0x0600 && r <= 0x06FF:
		return "arabic"
	default:
		return "other"
	}
}

package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want PDFType
	}{
		{"empty page", "", PDFTypeScanned},
		{"exactly 100 chars", strings.Repeat("a", 100), PDFTypeScanned},
		{"exactly 101 chars", strings.Repeat("a", 101), PDFTypeTextBased},
		{"whitespace only", strings.Repeat(" \t\n", 200), PDFTypeScanned},
		{"typical statement header", strings.Repeat("ACME BANK STATEMENT OF ACCOUNT ", 5), PDFTypeTextBased},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(fragmentsFromText(tt.text))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_MultipleFragmentsConcatenated(t *testing.T) {
	// 5 fragments of 25 chars = 125 chars total.
	frags := fragmentsFromText(
		strings.Repeat("x", 25), strings.Repeat("x", 25), strings.Repeat("x", 25),
		strings.Repeat("x", 25), strings.Repeat("x", 25),
	)
	assert.Equal(t, PDFTypeTextBased, Classify(frags))
}

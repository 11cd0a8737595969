package extraction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatcher struct {
	calls   int
	lastDoc string
	frags   []TextFragment
	outcome *MatchOutcome
}

func (m *fakeMatcher) ProcessDocument(ctx context.Context, documentName string, fragments []TextFragment, opts MatchOptions) (*MatchOutcome, error) {
	m.calls++
	m.lastDoc = documentName
	m.frags = fragments
	if m.outcome != nil {
		return m.outcome, nil
	}
	return &MatchOutcome{Success: true}, nil
}

func statementDoc() *fakeDoc {
	// PageFragments(ctx, n) must return fragments stamped with PageNumber n,
	// matching the real PageReader; fragmentsFromText hardcodes page 1.
	pageTwo := fragmentsFromText("card payment to grocery store 89.45 on 12/02/2024 reference code ABCD1234")
	for i := range pageTwo {
		pageTwo[i].PageNumber = 2
	}
	return &fakeDoc{pages: [][]TextFragment{
		fragmentsFromText(
			"ACME BANK statement of account for the period 01/02/2024 to 28/02/2024",
			"opening balance 1000.00 closing balance 2210.55 total credit 2500.00",
		),
		pageTwo,
	}}
}

func newTestPipeline(matcher RuleMatcher) *Pipeline {
	return NewPipeline(NewPageExtractor(2, discardLogger()), matcher, nil, discardLogger())
}

func TestPipeline_Process(t *testing.T) {
	matcher := &fakeMatcher{outcome: &MatchOutcome{Success: true, Warnings: []string{"locale guessed"}}}
	pipeline := newTestPipeline(matcher)

	result, err := pipeline.Process(context.Background(), "feb-statement.pdf", statementDoc(), ProcessOptions{
		LocaleHint:          "en-GB",
		ConfidenceThreshold: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, PDFTypeTextBased, result.PDFType)
	assert.Equal(t, 2, result.TotalPages)
	assert.False(t, result.Quality.ShouldFallbackToOCR)
	require.NotNil(t, result.Match)
	assert.True(t, result.Match.Success)

	assert.Equal(t, 1, matcher.calls)
	assert.Equal(t, "feb-statement.pdf", matcher.lastDoc)
	assert.NotEmpty(t, matcher.frags)
	// Fragments handed to the matcher cover both pages, in page order.
	assert.Equal(t, 1, matcher.frags[0].PageNumber)
	assert.Equal(t, 2, matcher.frags[len(matcher.frags)-1].PageNumber)
}

func TestPipeline_ScannedDocument(t *testing.T) {
	matcher := &fakeMatcher{}
	pipeline := newTestPipeline(matcher)

	doc := &fakeDoc{pages: [][]TextFragment{fragmentsFromText("ACME"), nil, nil}}
	result, err := pipeline.Process(context.Background(), "scan.pdf", doc, ProcessOptions{})

	require.ErrorIs(t, err, ErrScannedPDF)
	require.NotNil(t, result)
	assert.Equal(t, PDFTypeScanned, result.PDFType)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 0, matcher.calls, "scanned documents must not reach the rule matcher")
}

func TestPipeline_LowQualitySkipsMatcher(t *testing.T) {
	matcher := &fakeMatcher{}
	pipeline := newTestPipeline(matcher)

	garbage := strings.Repeat("^^~{}[]|\\<> ", 12)
	doc := &fakeDoc{pages: [][]TextFragment{fragmentsFromText(garbage)}}

	result, err := pipeline.Process(context.Background(), "garbled.pdf", doc, ProcessOptions{
		SkipMatchOnLowQuality: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Quality.ShouldFallbackToOCR)
	assert.Nil(t, result.Match)
	assert.Equal(t, 0, matcher.calls)
}

func TestPipeline_LowQualityStillMatchesWhenNotSkipping(t *testing.T) {
	matcher := &fakeMatcher{}
	pipeline := newTestPipeline(matcher)

	garbage := strings.Repeat("^^~{}[]|\\<> ", 12)
	doc := &fakeDoc{pages: [][]TextFragment{fragmentsFromText(garbage)}}

	result, err := pipeline.Process(context.Background(), "garbled.pdf", doc, ProcessOptions{})
	require.NoError(t, err)

	// The fallback signal is a recommendation, not an error.
	assert.True(t, result.Quality.ShouldFallbackToOCR)
	assert.Equal(t, 1, matcher.calls)
}

func TestPipeline_NilMatcherExtractsOnly(t *testing.T) {
	pipeline := newTestPipeline(nil)

	result, err := pipeline.Process(context.Background(), "dry-run.pdf", statementDoc(), ProcessOptions{})
	require.NoError(t, err)
	assert.Nil(t, result.Match)
	assert.NotEmpty(t, result.Fragments)
}

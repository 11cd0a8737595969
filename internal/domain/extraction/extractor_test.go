package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDoc is a PageReader with controllable per-page latency and failures.
type fakeDoc struct {
	pages    [][]TextFragment
	delays   map[int]time.Duration
	failures map[int]error

	mu    sync.Mutex
	calls []int
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) PageFragments(ctx context.Context, pageNumber int) ([]TextFragment, error) {
	d.mu.Lock()
	d.calls = append(d.calls, pageNumber)
	d.mu.Unlock()

	if delay, ok := d.delays[pageNumber]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := d.failures[pageNumber]; ok {
		return nil, err
	}
	return d.pages[pageNumber-1], nil
}

func pageFragment(page int) []TextFragment {
	return []TextFragment{{
		Text:       fmt.Sprintf("page-%d", page),
		PageNumber: page,
		Confidence: 1.0,
		Source:     SourceTextLayer,
	}}
}

func TestExtractPages_OrderPreservedAcrossBatches(t *testing.T) {
	doc := &fakeDoc{
		// Earlier pages in each batch finish last; output must still be in
		// page order.
		delays: map[int]time.Duration{
			1: 30 * time.Millisecond,
			2: 20 * time.Millisecond,
			3: 10 * time.Millisecond,
			4: 25 * time.Millisecond,
			5: 5 * time.Millisecond,
		},
	}
	for i := 1; i <= 6; i++ {
		doc.pages = append(doc.pages, pageFragment(i))
	}

	extractor := NewPageExtractor(3, discardLogger())
	fragments, total, err := extractor.ExtractPages(context.Background(), doc, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, total)
	require.Len(t, fragments, 6)
	for i, f := range fragments {
		assert.Equal(t, fmt.Sprintf("page-%d", i+1), f.Text)
	}
}

func TestExtractPages_PageCap(t *testing.T) {
	doc := &fakeDoc{}
	for i := 1; i <= 10; i++ {
		doc.pages = append(doc.pages, pageFragment(i))
	}

	extractor := NewPageExtractor(4, discardLogger())
	fragments, total, err := extractor.ExtractPages(context.Background(), doc, 3)
	require.NoError(t, err)

	assert.Equal(t, 10, total)
	assert.Len(t, fragments, 3)

	doc.mu.Lock()
	defer doc.mu.Unlock()
	assert.Len(t, doc.calls, 3)
}

func TestExtractPages_PageFailure(t *testing.T) {
	pageErr := errors.New("damaged xref")
	doc := &fakeDoc{failures: map[int]error{2: pageErr}}
	for i := 1; i <= 3; i++ {
		doc.pages = append(doc.pages, pageFragment(i))
	}

	extractor := NewPageExtractor(2, discardLogger())
	_, _, err := extractor.ExtractPages(context.Background(), doc, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, pageErr)
	assert.Contains(t, err.Error(), "page 2")
}

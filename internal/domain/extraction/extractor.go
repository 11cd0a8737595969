package extraction

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchWidth is the number of pages extracted concurrently per batch.
const DefaultBatchWidth = 5

// PageExtractor pulls positioned text fragments out of a document page by
// page. Pages are extracted in bounded-size concurrent batches to cap peak
// memory while overlapping per-page latency; the output preserves page order
// regardless of completion order within a batch.
type PageExtractor struct {
	batchWidth int
	logger     *slog.Logger
}

// NewPageExtractor creates an extractor. A non-positive batchWidth falls back
// to DefaultBatchWidth.
func NewPageExtractor(batchWidth int, logger *slog.Logger) *PageExtractor {
	if batchWidth <= 0 {
		batchWidth = DefaultBatchWidth
	}
	return &PageExtractor{batchWidth: batchWidth, logger: logger}
}

// ExtractPage returns the fragments of a single page.
func (e *PageExtractor) ExtractPage(ctx context.Context, doc PageReader, pageNumber int) ([]TextFragment, error) {
	fragments, err := doc.PageFragments(ctx, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page %d: %w", pageNumber, err)
	}
	return fragments, nil
}

// ExtractPages extracts up to maxPages pages (all pages when maxPages <= 0)
// and concatenates their fragments in page order. maxPages is a coarse cost
// bound for very long documents, not a cancellation mechanism.
func (e *PageExtractor) ExtractPages(ctx context.Context, doc PageReader, maxPages int) ([]TextFragment, int, error) {
	total := doc.PageCount()
	pages := total
	if maxPages > 0 && maxPages < pages {
		pages = maxPages
		e.logger.Debug("capping page extraction",
			slog.Int("total_pages", total),
			slog.Int("max_pages", maxPages),
		)
	}

	perPage := make([][]TextFragment, pages)

	for start := 0; start < pages; start += e.batchWidth {
		end := start + e.batchWidth
		if end > pages {
			end = pages
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				fragments, err := doc.PageFragments(gctx, i+1)
				if err != nil {
					return fmt.Errorf("failed to extract page %d: %w", i+1, err)
				}
				perPage[i] = fragments
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, total, err
		}
	}

	var out []TextFragment
	for _, fragments := range perPage {
		out = append(out, fragments...)
	}
	return out, total, nil
}

package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// defaultPageHeight is used when a page carries no resolvable MediaBox
// (US Letter in PDF points).
const defaultPageHeight = 792.0

// PageReader exposes a loaded PDF document to the extractor: a page count and
// positioned text content per page.
type PageReader interface {
	PageCount() int
	PageFragments(ctx context.Context, pageNumber int) ([]TextFragment, error)
}

// PDFDocument adapts a parsed PDF into a PageReader using its text layer.
type PDFDocument struct {
	reader *pdf.Reader
}

// NewPDFDocument parses PDF bytes into a document handle.
func NewPDFDocument(data []byte) (*PDFDocument, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &PDFDocument{reader: r}, nil
}

// PageCount returns the number of pages in the document.
func (d *PDFDocument) PageCount() int {
	return d.reader.NumPage()
}

// PageFragments extracts positioned text fragments from one page. Page numbers
// are 1-based. Whitespace-only fragments are dropped and the PDF's bottom-left
// origin is flipped to top-left.
func (d *PDFDocument) PageFragments(ctx context.Context, pageNumber int) ([]TextFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageNumber < 1 || pageNumber > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", pageNumber, d.reader.NumPage())
	}

	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, nil
	}

	height := pageHeight(page)
	return groupFragments(page.Content().Text, pageNumber, height), nil
}

// pageHeight resolves the page's MediaBox height, walking up the page tree for
// inherited values.
func pageHeight(page pdf.Page) float64 {
	v := page.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() {
			return mb.Index(3).Float64() - mb.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

// groupFragments merges the per-glyph text runs the PDF content stream yields
// into word-level fragments. A new fragment starts on a baseline change or a
// horizontal gap wider than the current font size.
func groupFragments(texts []pdf.Text, pageNumber int, height float64) []TextFragment {
	fragments := make([]TextFragment, 0, len(texts)/4)

	var (
		sb       strings.Builder
		startX   float64
		endX     float64
		baseline float64
		fontSize float64
		open     bool
	)

	flush := func() {
		if !open {
			return
		}
		open = false
		text := sb.String()
		sb.Reset()
		if strings.TrimSpace(text) == "" {
			return
		}
		fragments = append(fragments, TextFragment{
			Text: text,
			Box: BoundingBox{
				X:      startX,
				Y:      height - baseline,
				Width:  endX - startX,
				Height: fontSize,
			},
			PageNumber: pageNumber,
			Confidence: 1.0,
			Source:     SourceTextLayer,
		})
	}

	for _, t := range texts {
		sameBaseline := open && abs(t.Y-baseline) < 1.0
		gap := t.X - endX
		if !sameBaseline || gap > fontSize || gap < -1.0 {
			flush()
		}
		if !open {
			open = true
			startX = t.X
			baseline = t.Y
			fontSize = t.FontSize
		}
		sb.WriteString(t.S)
		endX = t.X + t.W
		if t.FontSize > fontSize {
			fontSize = t.FontSize
		}
	}
	flush()

	return fragments
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Package extraction turns bank-statement PDFs into positioned text fragments,
// classifies documents as text-based or scanned, and scores the extracted text
// so low-quality documents can be routed to an OCR-capable path.
package extraction

import "errors"

// FragmentSource identifies where a text fragment came from.
type FragmentSource string

const (
	SourceTextLayer FragmentSource = "text-layer"
	SourceOCR       FragmentSource = "ocr"
)

// PDFType is the document classification result.
type PDFType string

const (
	PDFTypeTextBased PDFType = "TEXT_BASED"
	PDFTypeScanned   PDFType = "SCANNED"
)

// ErrScannedPDF signals a document with no usable text layer. It is not
// recoverable within this pipeline; scanned documents run through the
// OCR-capable path instead.
var ErrScannedPDF = errors.New("SCANNED_PDF: document has no extractable text layer")

// BoundingBox positions a fragment on its page. Coordinates use a top-left
// origin; the PDF's bottom-left origin is flipped during extraction.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextFragment is one piece of positioned text extracted from a PDF page.
type TextFragment struct {
	Text       string         `json:"text"`
	Box        BoundingBox    `json:"boundingBox"`
	PageNumber int            `json:"pageNumber"`
	Confidence float64        `json:"confidence"`
	Source     FragmentSource `json:"source"`
}

// QualityMetrics carries the raw measurements behind a quality score, for
// diagnostics and tests.
type QualityMetrics struct {
	TotalChars       int     `json:"totalChars"`
	SpecialCharRatio float64 `json:"specialCharRatio"`
	ValidWordRatio   float64 `json:"validWordRatio"`
	HasDatePattern   bool    `json:"hasDatePattern"`
	HasAmountPattern bool    `json:"hasAmountPattern"`
	UnicodeBlocks    int     `json:"unicodeBlocks"`
	AvgWordLength    float64 `json:"avgWordLength"`
}

// QualityReport is the scorer's verdict on a document's extracted text.
// Recomputed per document, never persisted.
type QualityReport struct {
	Score               int            `json:"score"`
	ShouldFallbackToOCR bool           `json:"shouldFallbackToOCR"`
	Issues              []string       `json:"issues"`
	Metrics             QualityMetrics `json:"metrics"`
}

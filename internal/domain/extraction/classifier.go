package extraction

import "strings"

// scannedTextThreshold is the minimum number of page-1 characters for a
// document to count as text-based. At or below it, the text layer is assumed
// to be absent or vestigial (scanned document).
const scannedTextThreshold = 100

// Classify decides from page-1 fragments whether a document is text-based or
// image-only. Only the first page is inspected; statements always carry header
// text there when a text layer exists at all.
func Classify(pageOneFragments []TextFragment) PDFType {
	var sb strings.Builder
	for _, f := range pageOneFragments {
		sb.WriteString(f.Text)
	}

	if len(strings.TrimSpace(sb.String())) <= scannedTextThreshold {
		return PDFTypeScanned
	}
	return PDFTypeTextBased
}

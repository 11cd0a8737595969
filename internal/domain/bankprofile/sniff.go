package bankprofile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Format of a bulk import payload.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatUnknown Format = "unknown"
)

// DetectFormat sniffs an import payload by content, so operators can pipe
// files without caring about extensions. JSON payloads start with an array or
// object; CSV payloads have a delimited header line carrying the bank_code
// column.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeftFunc(data, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\ufeff'
	})
	if len(trimmed) == 0 {
		return FormatUnknown
	}

	switch trimmed[0] {
	case '[', '{':
		return FormatJSON
	}

	firstLine := trimmed
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		firstLine = trimmed[:i]
	}
	header := strings.ToLower(string(firstLine))
	if strings.Contains(header, ",") && strings.Contains(header, "bank_code") {
		return FormatCSV
	}
	return FormatUnknown
}

// RunAuto sniffs the payload format and imports it.
func (im *Importer) RunAuto(ctx context.Context, r io.Reader) (*ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import payload: %w", err)
	}

	switch DetectFormat(data) {
	case FormatJSON:
		return im.RunJSON(ctx, bytes.NewReader(data))
	case FormatCSV:
		return im.RunCSV(ctx, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unrecognized import format: expected a JSON array or a CSV with a bank_code column")
	}
}

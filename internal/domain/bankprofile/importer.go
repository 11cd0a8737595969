package bankprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gocarina/gocsv"
)

// ImportRow is one profile row of a bulk import file. gocsv matches CSV
// columns by header name; the same tags drive JSON imports.
type ImportRow struct {
	BankCode            string  `csv:"bank_code" json:"bank_code"`
	BankName            string  `csv:"bank_name" json:"bank_name"`
	DisplayName         string  `csv:"display_name" json:"display_name"`
	CountryCode         string  `csv:"country_code" json:"country_code"`
	CurrencyCode        string  `csv:"currency_code" json:"currency_code"`
	SwiftCode           string  `csv:"swift_code" json:"swift_code"`
	ConfidenceThreshold float64 `csv:"confidence_threshold" json:"confidence_threshold"`
	Template            string  `csv:"template" json:"template"`
	// Aliases is a comma-separated list of search aliases.
	Aliases string `csv:"aliases" json:"aliases"`
	// CustomPatterns is a JSON object of per-bank pattern-block overrides,
	// keyed by block name, deep-merged over the template.
	CustomPatterns string `csv:"custom_patterns" json:"custom_patterns"`
}

// ImportReport aggregates per-row outcomes of a bulk import run. One row's
// failure never blocks subsequent rows.
type ImportReport struct {
	Total    int      `json:"total"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer performs bulk profile imports with template inheritance.
type Importer struct {
	repo   Repository
	logger *slog.Logger
}

// NewImporter creates a bulk importer.
func NewImporter(repo Repository, logger *slog.Logger) *Importer {
	return &Importer{repo: repo, logger: logger}
}

// RunCSV parses CSV rows and imports them.
func (im *Importer) RunCSV(ctx context.Context, r io.Reader) (*ImportReport, error) {
	var rows []ImportRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse import CSV: %w", err)
	}
	return im.Run(ctx, rows), nil
}

// RunJSON parses a JSON array of rows and imports them.
func (im *Importer) RunJSON(ctx context.Context, r io.Reader) (*ImportReport, error) {
	var rows []ImportRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse import JSON: %w", err)
	}
	return im.Run(ctx, rows), nil
}

// Run imports every row, isolating failures per row. Error strings carry the
// 1-based row position for operator review. Templates are looked up once per
// distinct name and cached for the remainder of the run.
func (im *Importer) Run(ctx context.Context, rows []ImportRow) *ImportReport {
	report := &ImportReport{Total: len(rows)}
	templates := newTemplateCache(im.repo)

	for i, row := range rows {
		inserted, err := im.importRow(ctx, row, templates)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if inserted {
			report.Inserted++
		} else {
			report.Skipped++
		}
	}

	im.logger.Info("bank profile import finished",
		slog.Int("total", report.Total),
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
	)
	return report
}

func (im *Importer) importRow(ctx context.Context, row ImportRow, templates *templateCache) (bool, error) {
	if row.BankCode == "" || row.BankName == "" || row.CountryCode == "" {
		return false, fmt.Errorf("missing required field (bank_code, bank_name and country_code are mandatory)")
	}

	var base *Template
	if row.Template != "" {
		var err error
		base, err = templates.get(ctx, row.Template)
		if err != nil {
			return false, fmt.Errorf("template %q: %w", row.Template, err)
		}
	}
	if base == nil {
		base = &Template{}
	}

	overrides := map[string]PatternBlock{}
	if strings.TrimSpace(row.CustomPatterns) != "" {
		if err := json.Unmarshal([]byte(row.CustomPatterns), &overrides); err != nil {
			return false, fmt.Errorf("invalid custom_patterns JSON: %w", err)
		}
	}

	profile := &BankProfile{
		BankCode:            row.BankCode,
		BankName:            row.BankName,
		DisplayName:         row.DisplayName,
		CountryCode:         row.CountryCode,
		Currency:            row.CurrencyCode,
		SwiftCode:           row.SwiftCode,
		Version:             1,
		IsActive:            true,
		ConfidenceThreshold: row.ConfidenceThreshold,
		DetectPatterns:      mergeBlock(base.DetectPatterns, overrides["detectPatterns"]),
		TransactionPatterns: mergeBlock(base.TransactionPatterns, overrides["transactionPatterns"]),
		ValidationRules:     mergeBlock(base.ValidationRules, overrides["validationRules"]),
		RegionalConfig:      mergeBlock(base.RegionalConfig, overrides["regionalConfig"]),
		ColumnConfig:        mergeBlock(base.ColumnConfig, overrides["columnConfig"]),
		Aliases:             splitAliases(row.Aliases),
	}

	if err := ValidateBlocks(profile); err != nil {
		return false, fmt.Errorf("invalid pattern blocks: %w", err)
	}

	inserted, err := im.repo.Insert(ctx, profile)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func splitAliases(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	aliases := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}
	return aliases
}

// templateCache memoizes template lookups (hits and misses) for one import
// run.
type templateCache struct {
	repo    Repository
	entries map[string]*Template
	errors  map[string]error
}

func newTemplateCache(repo Repository) *templateCache {
	return &templateCache{
		repo:    repo,
		entries: make(map[string]*Template),
		errors:  make(map[string]error),
	}
}

func (tc *templateCache) get(ctx context.Context, name string) (*Template, error) {
	if t, ok := tc.entries[name]; ok {
		return t, nil
	}
	if err, ok := tc.errors[name]; ok {
		return nil, err
	}

	t, err := tc.repo.GetTemplate(ctx, name)
	if err != nil {
		tc.errors[name] = err
		return nil, err
	}
	tc.entries[name] = t
	return t, nil
}

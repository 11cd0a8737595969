// Package export renders parsed statement data into downloadable workbooks.
package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/shopspring/decimal"

	"github.com/statementdesk/ingest/internal/domain/anonymize"
	"github.com/statementdesk/ingest/internal/domain/statement"
	"github.com/statementdesk/ingest/pkg/money"
)

// DefaultSheetName is the transaction sheet created in every workbook.
const DefaultSheetName = "Transactions"

var headerRow = []string{
	"Date", "Description", "Reference", "Account", "Debit", "Credit", "Balance", "Currency",
}

// Options controls how a workbook is rendered.
type Options struct {
	// Anonymize runs every transaction through the masker before writing.
	// Masking state is reset once per workbook, so pseudonyms are consistent
	// within the file and never shared across files.
	Anonymize bool
	Mask      anonymize.MaskOptions
	SheetName string
}

// DefaultOptions anonymizes with every masking stage enabled.
func DefaultOptions() Options {
	return Options{
		Anonymize: true,
		Mask:      anonymize.DefaultMaskOptions(),
		SheetName: DefaultSheetName,
	}
}

// WorkbookWriter renders transactions into an XLSX workbook.
type WorkbookWriter struct {
	masker *anonymize.Masker
	logger *slog.Logger
}

// NewWorkbookWriter creates a writer. masker may be nil only when callers
// never request anonymization.
func NewWorkbookWriter(masker *anonymize.Masker, logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{masker: masker, logger: logger}
}

// Write renders one workbook with a header row followed by one row per
// transaction, in input order.
func (w *WorkbookWriter) Write(out io.Writer, txs []statement.Transaction, opts Options) error {
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}

	if opts.Anonymize {
		if w.masker == nil {
			return fmt.Errorf("anonymized export requested but no masker configured")
		}
		txs = w.masker.MaskTransactions(txs, opts.Mask)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", opts.SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := w.writeRow(f, opts.SheetName, 1, headerRow); err != nil {
		return err
	}
	for i, tx := range txs {
		balance := ""
		if tx.Balance != nil {
			balance = tx.Balance.String()
		}
		row := []string{
			tx.Date.Format("2006-01-02"),
			tx.Description,
			tx.Reference,
			tx.AccountNumber,
			amountCell(tx.Debit, tx.Currency),
			amountCell(tx.Credit, tx.Currency),
			balance,
			tx.Currency,
		}
		if err := w.writeRow(f, opts.SheetName, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("workbook exported",
		slog.Int("transactions", len(txs)),
		slog.Bool("anonymized", opts.Anonymize),
	)
	return nil
}

// amountCell renders a transaction amount with its currency symbol and minor
// units; zero amounts and currency-less rows stay as plain decimals.
func amountCell(amount decimal.Decimal, currency string) string {
	if currency == "" || amount.IsZero() {
		return amount.String()
	}
	return money.NewFromDecimal(amount, currency).Display()
}

func (w *WorkbookWriter) writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

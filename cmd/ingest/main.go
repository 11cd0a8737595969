// Command ingest processes bank statement PDFs: it extracts positioned text,
// classifies and quality-scores documents, manages bank parsing profiles, and
// runs as a background worker serving metrics and cache refresh jobs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/statementdesk/ingest/internal/domain/export"
	"github.com/statementdesk/ingest/internal/domain/extraction"
	"github.com/statementdesk/ingest/internal/domain/statement"
	"github.com/statementdesk/ingest/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Cleanup()

	switch os.Args[1] {
	case "process":
		err = runProcess(ctx, deps, os.Args[2:])
	case "import-profiles":
		err = runImportProfiles(ctx, deps, os.Args[2:])
	case "export":
		err = runExport(deps, os.Args[2:])
	case "search":
		err = runSearch(ctx, deps, os.Args[2:])
	case "serve":
		err = runServe(ctx, deps)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ingest <command> [flags]

commands:
  process <file.pdf>       extract and quality-score a statement PDF
  import-profiles <file>   bulk import bank profiles from CSV or JSON
  export <txs.json> <out.xlsx>
                           render parsed transactions as an XLSX workbook
  search <query>           search bank profiles by name or alias
  serve                    run the background worker (metrics + cache refresh)`)
}

// runProcess stores the PDF, runs the extraction pipeline and prints the
// quality report as JSON. A scanned document exits with a distinct error so
// operators can route it to the OCR path.
func runProcess(ctx context.Context, deps *Dependencies, args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	keep := fs.Bool("keep", false, "retain the uploaded copy in document storage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("process: expected exactly one PDF path")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := deps.Documents.Store(ctx, filepath.Base(path), "application/pdf", f)
	f.Close()
	if err != nil {
		return err
	}
	if !*keep {
		defer func() {
			if err := deps.Documents.Delete(context.Background(), info.ID); err != nil {
				deps.Logger.Warn("failed to remove uploaded copy", slog.Any("error", err))
			}
		}()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := extraction.NewPDFDocument(data)
	if err != nil {
		return fmt.Errorf("failed to parse PDF: %w", err)
	}

	result, err := deps.Pipeline.Process(ctx, info.Name, doc, extraction.ProcessOptions{
		MaxPages:              deps.Config.Extraction.MaxPages,
		SkipMatchOnLowQuality: true,
	})
	if errors.Is(err, extraction.ErrScannedPDF) {
		printJSON(result)
		return err
	}
	if err != nil {
		return err
	}

	printJSON(result)
	return nil
}

func runImportProfiles(ctx context.Context, deps *Dependencies, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import-profiles: expected exactly one CSV or JSON path")
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	report, err := deps.Importer.RunAuto(ctx, f)
	if err != nil {
		return err
	}

	printJSON(report)
	return nil
}

// runExport renders a JSON transaction dump into an XLSX workbook. PII masking
// follows ANONYMIZE_ENABLED unless -plain overrides it.
func runExport(deps *Dependencies, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	plain := fs.Bool("plain", false, "skip PII masking even when anonymization is enabled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("export: expected a transactions JSON path and an output path")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fs.Arg(0), err)
	}
	var txs []statement.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return fmt.Errorf("failed to parse transactions: %w", err)
	}

	opts := export.DefaultOptions()
	opts.Anonymize = deps.Config.Anonymize.Enabled && !*plain

	out, err := os.Create(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", fs.Arg(1), err)
	}
	defer out.Close()

	if err := deps.Workbooks.Write(out, txs, opts); err != nil {
		return err
	}
	return out.Sync()
}

func runSearch(ctx context.Context, deps *Dependencies, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("search: expected exactly one query")
	}

	profiles, err := deps.Registry.Search(ctx, args[0])
	if err != nil {
		return err
	}
	printJSON(profiles)
	return nil
}

// runServe exposes Prometheus metrics and keeps the profile cache warm until
// the process receives a termination signal.
func runServe(ctx context.Context, deps *Dependencies) error {
	if err := deps.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer deps.Scheduler.Stop()

	// Warm the unfiltered key immediately rather than waiting for the first
	// cron tick.
	if _, err := deps.Registry.Load(ctx, "", true); err != nil {
		deps.Logger.Warn("initial cache warm failed", slog.Any("error", err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Observability.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("worker listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to encode output", slog.Any("error", err))
	}
}

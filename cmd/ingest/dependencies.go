package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/statementdesk/ingest/internal/domain/anonymize"
	"github.com/statementdesk/ingest/internal/domain/bankprofile"
	"github.com/statementdesk/ingest/internal/domain/export"
	"github.com/statementdesk/ingest/internal/domain/extraction"
	"github.com/statementdesk/ingest/pkg/config"
	"github.com/statementdesk/ingest/pkg/cron"
	"github.com/statementdesk/ingest/pkg/db"
	"github.com/statementdesk/ingest/pkg/metrics"
	"github.com/statementdesk/ingest/pkg/storage"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *db.DB

	PromRegistry *prometheus.Registry
	Metrics      *metrics.Metrics

	ProfileRepo bankprofile.Repository
	Registry    *bankprofile.Registry
	Importer    *bankprofile.Importer

	Documents storage.Storage
	Extractor *extraction.PageExtractor
	Pipeline  *extraction.Pipeline
	Masker    *anonymize.Masker
	Workbooks *export.WorkbookWriter
	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: logger}

	database, err := db.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	deps.DB = database

	if err := deps.DB.Migrate(cfg.Database); err != nil {
		deps.DB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	deps.PromRegistry = prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New(deps.PromRegistry)
	}

	deps.ProfileRepo = bankprofile.NewPostgresRepository(deps.DB.Pool)
	deps.Registry = bankprofile.NewRegistry(
		deps.ProfileRepo,
		bankprofile.NewCache(cfg.Registry.CacheTTL),
		deps.Metrics,
		cfg.Registry.SearchLimit,
		logger,
	)
	deps.Importer = bankprofile.NewImporter(deps.ProfileRepo, logger)

	documents, err := storage.New(&storage.Config{
		Type:      storage.TypeLocal,
		LocalPath: cfg.Storage.LocalPath,
	})
	if err != nil {
		deps.DB.Close()
		return nil, fmt.Errorf("failed to init document storage: %w", err)
	}
	deps.Documents = documents

	deps.Extractor = extraction.NewPageExtractor(cfg.Extraction.BatchWidth, logger)
	// The rule matcher runs as a separate service; the CLI pipeline does
	// extraction and quality scoring only.
	deps.Pipeline = extraction.NewPipeline(deps.Extractor, nil, deps.Metrics, logger)

	deps.Masker = anonymize.NewMasker(logger)
	deps.Workbooks = export.NewWorkbookWriter(deps.Masker, logger)
	deps.Scheduler = cron.NewScheduler(deps.Registry, cfg.Registry.RefreshSchedule, logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Cleanup closes all resources.
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}

package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/statementdesk/ingest/pkg/metrics"
)

// ProcessOptions configures one pipeline run.
type ProcessOptions struct {
	// MaxPages caps how much of a long document is processed (0 = all pages).
	MaxPages int
	// LocaleHint and ConfidenceThreshold are forwarded to the rule matcher.
	LocaleHint          string
	ConfidenceThreshold float64
	// SkipMatchOnLowQuality blocks the rule matcher when the quality scorer
	// recommends the OCR path. The quality signal itself is always reported.
	SkipMatchOnLowQuality bool
}

// Result is the pipeline output: extraction metadata, the quality verdict, and
// the forwarded matcher outcome (nil when matching was skipped).
type Result struct {
	DocumentName string         `json:"documentName"`
	PDFType      PDFType        `json:"pdfType"`
	TotalPages   int            `json:"totalPages"`
	Fragments    []TextFragment `json:"-"`
	Quality      QualityReport  `json:"quality"`
	Match        *MatchOutcome  `json:"match,omitempty"`
	Elapsed      time.Duration  `json:"elapsed"`
}

// Pipeline sequences extraction, classification and quality scoring, then
// hands the fragment stream to the external rule matcher.
type Pipeline struct {
	extractor *PageExtractor
	matcher   RuleMatcher // optional; nil skips matching
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewPipeline creates a pipeline. matcher may be nil for extraction-only runs
// (quality dry runs); m may be nil when metrics are disabled.
func NewPipeline(extractor *PageExtractor, matcher RuleMatcher, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		matcher:   matcher,
		metrics:   m,
		tracer:    otel.Tracer("ingest/extraction"),
		logger:    logger,
	}
}

// Process runs a document through the pipeline. A scanned document returns
// ErrScannedPDF: the caller must redirect it to the OCR-capable path, this
// pipeline never performs OCR itself.
func (p *Pipeline) Process(ctx context.Context, documentName string, doc PageReader, opts ProcessOptions) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Process")
	defer span.End()

	start := time.Now()
	result := &Result{DocumentName: documentName}

	// Classification inspects page 1 only, before paying for the full
	// document.
	pageOne, err := p.extractor.ExtractPage(ctx, doc, 1)
	if err != nil {
		p.countOutcome("error")
		return nil, fmt.Errorf("failed to extract first page: %w", err)
	}

	result.PDFType = Classify(pageOne)
	if result.PDFType == PDFTypeScanned {
		p.countOutcome("scanned")
		p.logger.Info("scanned document detected",
			slog.String("document", documentName),
		)
		result.TotalPages = doc.PageCount()
		result.Elapsed = time.Since(start)
		return result, ErrScannedPDF
	}

	extractStart := time.Now()
	fragments, totalPages, err := p.extractor.ExtractPages(ctx, doc, opts.MaxPages)
	if err != nil {
		p.countOutcome("error")
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	if p.metrics != nil {
		p.metrics.ExtractionDuration.Observe(time.Since(extractStart).Seconds())
	}

	result.Fragments = fragments
	result.TotalPages = totalPages
	result.Quality = ScoreQuality(fragments)
	if p.metrics != nil {
		p.metrics.QualityScore.Observe(float64(result.Quality.Score))
	}

	if result.Quality.ShouldFallbackToOCR {
		if p.metrics != nil {
			p.metrics.OCRFallbacks.Inc()
		}
		p.logger.Warn("low text quality, OCR fallback recommended",
			slog.String("document", documentName),
			slog.Int("score", result.Quality.Score),
			slog.Any("issues", result.Quality.Issues),
		)
	}

	if p.matcher != nil && !(opts.SkipMatchOnLowQuality && result.Quality.ShouldFallbackToOCR) {
		outcome, err := p.matcher.ProcessDocument(ctx, documentName, fragments, MatchOptions{
			LocaleHint:          opts.LocaleHint,
			ConfidenceThreshold: opts.ConfidenceThreshold,
		})
		if err != nil {
			p.countOutcome("error")
			return nil, fmt.Errorf("rule matcher failed: %w", err)
		}
		result.Match = outcome
	}

	result.Elapsed = time.Since(start)
	p.countOutcome("processed")
	p.logger.Info("document processed",
		slog.String("document", documentName),
		slog.Int("pages", result.TotalPages),
		slog.Int("fragments", len(fragments)),
		slog.Int("quality_score", result.Quality.Score),
		slog.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func (p *Pipeline) countOutcome(outcome string) {
	if p.metrics != nil {
		p.metrics.DocumentsProcessed.WithLabelValues(outcome).Inc()
	}
}

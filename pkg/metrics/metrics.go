// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors shared by the pipeline and the profile registry.
type Metrics struct {
	DocumentsProcessed *prometheus.CounterVec
	OCRFallbacks       prometheus.Counter
	QualityScore       prometheus.Histogram
	ExtractionDuration prometheus.Histogram

	ProfileCacheHits   prometheus.Counter
	ProfileCacheMisses prometheus.Counter
	ProfileStaleServes prometheus.Counter
}

// New registers all collectors against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_documents_processed_total",
			Help: "Documents processed by the extraction pipeline, by outcome.",
		}, []string{"outcome"}),
		OCRFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_ocr_fallbacks_total",
			Help: "Documents routed to the OCR path due to low text quality.",
		}),
		QualityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_quality_score",
			Help:    "Distribution of text quality scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_extraction_duration_seconds",
			Help:    "Time spent extracting text fragments per document.",
			Buckets: prometheus.DefBuckets,
		}),
		ProfileCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_profile_cache_hits_total",
			Help: "Bank profile loads served from a fresh cache entry.",
		}),
		ProfileCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_profile_cache_misses_total",
			Help: "Bank profile loads that queried the backing store.",
		}),
		ProfileStaleServes: factory.NewCounter(prometheus.CounterOpts{
			Name: "ingest_profile_stale_serves_total",
			Help: "Bank profile loads served stale data after a store failure.",
		}),
	}
}

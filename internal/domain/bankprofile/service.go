package bankprofile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/statementdesk/ingest/pkg/metrics"
)

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 20

// Registry serves bank profiles from an in-memory TTL cache backed by the
// repository. Backing-store failures degrade to last-known-good data rather
// than surfacing to callers.
type Registry struct {
	repo        Repository
	cache       *Cache
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *slog.Logger
	searchLimit int
}

// NewRegistry creates a registry. m may be nil when metrics are disabled;
// searchLimit <= 0 falls back to DefaultSearchLimit.
func NewRegistry(repo Repository, cache *Cache, m *metrics.Metrics, searchLimit int, logger *slog.Logger) *Registry {
	if searchLimit <= 0 {
		searchLimit = DefaultSearchLimit
	}
	return &Registry{
		repo:        repo,
		cache:       cache,
		metrics:     m,
		tracer:      otel.Tracer("ingest/bankprofile"),
		logger:      logger,
		searchLimit: searchLimit,
	}
}

func cacheKey(countryCode string) string {
	if countryCode == "" {
		return CacheKeyAll
	}
	return strings.ToLower(countryCode)
}

// Load returns active+verified profiles, optionally filtered by country,
// ordered by descending usage count. Within the TTL the cache is served
// directly; on a backing-store failure the last cached value for the key is
// served regardless of age, or an empty list if nothing was ever cached.
// Load never returns a backing-store error.
func (r *Registry) Load(ctx context.Context, countryCode string, forceRefresh bool) ([]BankProfile, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Load")
	defer span.End()

	key := cacheKey(countryCode)

	if !forceRefresh {
		if profiles, ok := r.cache.Get(key); ok {
			if r.metrics != nil {
				r.metrics.ProfileCacheHits.Inc()
			}
			return profiles, nil
		}
	}
	if r.metrics != nil {
		r.metrics.ProfileCacheMisses.Inc()
	}

	profiles, err := r.repo.ListActive(ctx, countryCode)
	if err != nil {
		r.logger.Error("bank profile fetch failed, degrading to cache",
			slog.String("key", key),
			slog.Any("error", err),
		)
		if stale, ok := r.cache.GetStale(key); ok {
			if r.metrics != nil {
				r.metrics.ProfileStaleServes.Inc()
			}
			return stale, nil
		}
		return []BankProfile{}, nil
	}

	r.cache.Put(key, profiles)
	return profiles, nil
}

// Get returns a single profile by its unique bank code.
func (r *Registry) Get(ctx context.Context, bankCode string) (*BankProfile, error) {
	p, err := r.repo.GetByCode(ctx, bankCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %q: %w", bankCode, err)
	}
	return p, nil
}

// Search matches query case-insensitively against bank name, display name and
// aliases, ranked by usage count, capped at the search limit. When the
// substring search comes back empty, a fuzzy pass over the cached profile
// names catches typos.
func (r *Registry) Search(ctx context.Context, query string) ([]BankProfile, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	profiles, err := r.repo.Search(ctx, query, r.searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	if len(profiles) > 0 {
		return profiles, nil
	}

	return r.fuzzySearch(ctx, query), nil
}

// fuzzySearch ranks all loadable profiles by fuzzy match against the query.
func (r *Registry) fuzzySearch(ctx context.Context, query string) []BankProfile {
	all, err := r.Load(ctx, "", false)
	if err != nil || len(all) == 0 {
		return nil
	}

	var matched []BankProfile
	for _, p := range all {
		if fuzzy.MatchNormalizedFold(query, p.BankName) ||
			fuzzy.MatchNormalizedFold(query, p.DisplayName) {
			matched = append(matched, p)
			continue
		}
		for _, alias := range p.Aliases {
			if fuzzy.MatchNormalizedFold(query, alias) {
				matched = append(matched, p)
				break
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UsageCount > matched[j].UsageCount
	})
	if len(matched) > r.searchLimit {
		matched = matched[:r.searchLimit]
	}
	return matched
}

// RecordUsage updates a profile's usage telemetry after a parse attempt. The
// increment is a single atomic store operation.
func (r *Registry) RecordUsage(ctx context.Context, profileID uuid.UUID, success bool, transactionCount int) error {
	if err := r.repo.IncrementUsage(ctx, profileID, success, transactionCount); err != nil {
		return fmt.Errorf("failed to record usage for %s: %w", profileID, err)
	}

	r.logger.Debug("profile usage recorded",
		slog.String("profile_id", profileID.String()),
		slog.Bool("success", success),
		slog.Int("transactions", transactionCount),
	)
	return nil
}

// RefreshAll re-fetches every cached key. Used by the background cache warm
// job.
func (r *Registry) RefreshAll(ctx context.Context) {
	for _, key := range r.cache.Keys() {
		country := key
		if key == CacheKeyAll {
			country = ""
		}
		if _, err := r.Load(ctx, country, true); err != nil {
			r.logger.Warn("cache refresh failed", slog.String("key", key), slog.Any("error", err))
		}
	}
}

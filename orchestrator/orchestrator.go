// ABOUTME: This file implements the content orchestrator and its fallback tiers
// ABOUTME: Concurrent cache-aside fetches across adapters; never raises for insufficient sources
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/andrewvu270/MindForge-sub000/adapter"
	"github.com/andrewvu270/MindForge-sub000/cache"
	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/metrics"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/retry"
)

const (
	// defaultItemsPerSource bounds each adapter's contribution per call.
	defaultItemsPerSource = 3

	// archiveSource labels tier-3 content recovered from the lesson archive.
	archiveSource = "internal_archive"
)

// ArchiveSearcher is the internal last-resort content collaborator: lessons
// previously persisted by the writer, queried by topic.
type ArchiveSearcher interface {
	SearchByTopic(ctx context.Context, topic string, limit int) ([]*models.LessonRecord, error)
}

// Orchestrator resolves adapters per field, fans out cache-aside fetches,
// merges contributions, and escalates through fallback tiers.
type Orchestrator struct {
	registry *adapter.Registry
	cache    *cache.ContentCache
	retryCfg retry.Config
	archive  ArchiveSearcher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	group    singleflight.Group
}

// New builds the orchestrator and registers each adapter's default TTL on the
// shared cache. archive may be nil when no database is configured; tier 3
// then degrades to an empty contribution.
func New(registry *adapter.Registry, contentCache *cache.ContentCache, retryCfg retry.Config, archive ArchiveSearcher, m *metrics.Metrics, logger *slog.Logger) *Orchestrator {
	for _, name := range registry.Names() {
		if a, ok := registry.Get(name); ok {
			contentCache.SetSourceTTL(name, a.Descriptor().DefaultTTL)
		}
	}

	return &Orchestrator{
		registry: registry,
		cache:    contentCache,
		retryCfg: retryCfg,
		archive:  archive,
		metrics:  m,
		logger:   logger,
	}
}

// FetchMultiSource fans out cache-aside fetches for the first numSources
// adapters resolved for field, joining once every task has resolved. A task
// that fails is logged and contributes nothing; siblings are unaffected.
func (o *Orchestrator) FetchMultiSource(ctx context.Context, field, topic string, numSources, itemsPerSource int) []models.NormalizedContent {
	if itemsPerSource <= 0 {
		itemsPerSource = defaultItemsPerSource
	}

	names := adaptersForField(field)
	if numSources > 0 && numSources < len(names) {
		names = names[:numSources]
	}

	results := ForEach(ctx, 0, names, func(ctx context.Context, name string) ([]models.NormalizedContent, error) {
		return o.fetchCached(ctx, name, topic, itemsPerSource)
	})

	var merged []models.NormalizedContent
	for _, r := range results {
		if r.Err != nil {
			o.logger.Warn("adapter task failed",
				"adapter", names[r.Index],
				"field", field,
				"topic", topic,
				"error", r.Err)
			continue
		}
		merged = append(merged, r.Value...)
	}

	return dedupeItems(merged)
}

// FallbackRequest parameterizes FetchWithFallback.
type FallbackRequest struct {
	Field       string
	Topic       string
	MinSources  int
	MaxAttempts int
}

// FetchWithFallback escalates through three tiers until MinSources distinct
// sources have contributed: (1) repeated widening multi-source fetches,
// (2) a forced baseline top-up, (3) the internal lesson archive. It never
// fails for insufficient sources; the worst case is an empty outcome.
func (o *Orchestrator) FetchWithFallback(ctx context.Context, req FallbackRequest) models.Outcome {
	minSources := req.MinSources
	if minSources <= 0 {
		minSources = 1
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var accumulated []models.NormalizedContent

	// Tier 1: retry multi-source fetch, widening the adapter count each
	// attempt and accumulating distinct-source contributions.
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			o.metrics.FallbackTier.WithLabelValues("1").Inc()
			o.logger.Info("fallback tier 1: widening fetch",
				"field", req.Field,
				"topic", req.Topic,
				"attempt", attempt)
		}

		numSources := minSources + attempt - 1
		batch := o.FetchMultiSource(ctx, req.Field, req.Topic, numSources, defaultItemsPerSource)
		accumulated = mergeBySource(accumulated, batch)

		if models.UniqueSourceCount(accumulated) >= minSources {
			return outcome(accumulated, minSources, models.CompletenessComplete)
		}
	}

	// Tier 2: force-fetch the broad-coverage baseline if it has not
	// contributed yet.
	if !hasSource(accumulated, baselineBroadAdapter) {
		o.metrics.FallbackTier.WithLabelValues("2").Inc()
		o.logger.Info("fallback tier 2: baseline top-up",
			"field", req.Field,
			"topic", req.Topic,
			"adapter", baselineBroadAdapter)

		items, err := o.fetchCached(ctx, baselineBroadAdapter, req.Topic, defaultItemsPerSource)
		if err != nil {
			o.logger.Warn("baseline top-up failed", "topic", req.Topic, "error", err)
		} else {
			accumulated = mergeBySource(accumulated, items)
		}

		if models.UniqueSourceCount(accumulated) >= minSources {
			return outcome(accumulated, minSources, models.CompletenessComplete)
		}
	}

	// Tier 3: the internal lesson archive as a genuine last resort.
	if o.archive != nil {
		o.metrics.FallbackTier.WithLabelValues("3").Inc()
		o.logger.Info("fallback tier 3: internal archive",
			"field", req.Field,
			"topic", req.Topic)

		archived := o.fetchFromArchive(ctx, req.Topic)
		if len(archived) > 0 {
			accumulated = mergeBySource(accumulated, archived)
			return outcome(accumulated, minSources, models.CompletenessInternalFallback)
		}
	}

	return outcome(accumulated, minSources, models.CompletenessPartial)
}

// FetchWithPartialSuccess returns the collected content plus an explicit
// completeness flag for callers that branch on it directly.
func (o *Orchestrator) FetchWithPartialSuccess(ctx context.Context, req FallbackRequest) ([]models.NormalizedContent, bool) {
	out := o.FetchWithFallback(ctx, req)
	return out.Items, out.Completeness == models.CompletenessComplete
}

// fetchCached runs the cache-aside protocol for one adapter: cache lookup,
// then a retried, per-attempt-bounded fetch on a miss, then cache fill.
func (o *Orchestrator) fetchCached(ctx context.Context, name, topic string, limit int) ([]models.NormalizedContent, error) {
	a, ok := o.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAdapterNotFound, name)
	}

	params := map[string]string{"limit": strconv.Itoa(limit)}

	if cached, hit := o.cache.Get(name, topic, params); hit {
		o.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	o.metrics.CacheLookups.WithLabelValues("miss").Inc()

	// 同一キーへの同時ミスは1回のフェッチに集約する
	v, err, _ := o.group.Do(name+"|"+topic+"|"+strconv.Itoa(limit), func() (any, error) {
		return o.fetchUpstream(ctx, a, name, topic, limit, params)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.NormalizedContent), nil
}

// fetchUpstream performs the retried, per-attempt-bounded fetch and fills the
// cache on success.
func (o *Orchestrator) fetchUpstream(ctx context.Context, a adapter.SourceAdapter, name, topic string, limit int, params map[string]string) ([]models.NormalizedContent, error) {
	desc := a.Descriptor()
	retryCfg := o.retryCfg
	if desc.MaxRetries > 0 {
		retryCfg.MaxAttempts = desc.MaxRetries
	}
	retrier := retry.NewRetrier(retryCfg, retry.IsRetryableError, o.logger.With("adapter", name))

	start := time.Now()
	var items []models.NormalizedContent
	err := retrier.DoWithTimeout(ctx, desc.Timeout, func(ctx context.Context) error {
		fetched, err := adapter.FetchAndNormalize(ctx, a, topic, limit, o.logger)
		if err != nil {
			return err
		}
		items = fetched
		return nil
	})
	o.metrics.FetchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		o.metrics.FetchTotal.WithLabelValues(name, "failure").Inc()
		return nil, err
	}
	o.metrics.FetchTotal.WithLabelValues(name, "success").Inc()

	o.cache.Set(name, topic, items, 0, params)
	return items, nil
}

// fetchFromArchive converts archived lessons into normalized content.
func (o *Orchestrator) fetchFromArchive(ctx context.Context, topic string) []models.NormalizedContent {
	lessons, err := o.archive.SearchByTopic(ctx, topic, defaultItemsPerSource)
	if err != nil {
		o.logger.Warn("archive search failed", "topic", topic, "error", err)
		return nil
	}

	items := make([]models.NormalizedContent, 0, len(lessons))
	for _, lesson := range lessons {
		items = append(items, models.NormalizedContent{
			Source:     archiveSource,
			SourceType: models.SourceTypeText,
			Title:      lesson.Title,
			Content:    lesson.Content,
			Metadata: map[string]string{
				"lesson_id": lesson.ID,
				"field":     lesson.Field,
			},
			FetchedAt: time.Now().UTC(),
		})
	}
	return items
}

// InvalidateField sweeps the topic's cache entries for every adapter relevant
// to the field.
func (o *Orchestrator) InvalidateField(field, topic string) int {
	removed := 0
	for _, name := range adaptersForField(field) {
		removed += o.cache.InvalidateSourceTopic(name, topic)
	}
	return removed
}

// InvalidateTopic sweeps the topic across every registered adapter.
func (o *Orchestrator) InvalidateTopic(topic string) int {
	return o.cache.InvalidateTopic(topic)
}

// InvalidateAll clears the whole cache, used after a known upstream refresh.
func (o *Orchestrator) InvalidateAll() {
	o.cache.Clear()
}

// CacheStats exposes the shared cache's hit-rate snapshot.
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.cache.Stats()
}

func outcome(items []models.NormalizedContent, minSources int, completeness models.Completeness) models.Outcome {
	unique := models.UniqueSourceCount(items)
	if completeness == models.CompletenessComplete && unique < minSources {
		completeness = models.CompletenessPartial
	}
	return models.Outcome{
		Items:             items,
		UniqueSourceCount: unique,
		Completeness:      completeness,
	}
}

// mergeBySource folds a new batch into the accumulated list, keeping the
// first contribution seen per source so repeated attempts cannot duplicate.
func mergeBySource(accumulated, batch []models.NormalizedContent) []models.NormalizedContent {
	seen := make(map[string]struct{})
	for _, item := range accumulated {
		seen[item.Source] = struct{}{}
	}

	for _, item := range batch {
		if _, dup := seen[item.Source]; dup {
			continue
		}
		accumulated = append(accumulated, item)
	}
	return accumulated
}

// dedupeItems drops exact repeats of the same record, which show up when two
// providers syndicate the same article.
func dedupeItems(items []models.NormalizedContent) []models.NormalizedContent {
	type identity struct {
		source, url, title string
	}
	seen := make(map[identity]struct{}, len(items))

	out := items[:0]
	for _, item := range items {
		id := identity{source: item.Source, url: item.URL, title: item.Title}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}

func hasSource(items []models.NormalizedContent, source string) bool {
	for _, item := range items {
		if item.Source == source {
			return true
		}
	}
	return false
}

// ABOUTME: This file tests the orchestrator: cache-aside idempotency, failure isolation, fallback tiers
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewvu270/MindForge-sub000/adapter"
	"github.com/andrewvu270/MindForge-sub000/cache"
	"github.com/andrewvu270/MindForge-sub000/metrics"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func fastRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:   2,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0,
	}
}

// fakeAdapter counts fetches and serves canned items or a canned error.
type fakeAdapter struct {
	name       string
	sourceType models.SourceType
	items      []adapter.RawItem
	err        error
	delay      time.Duration
	fetchCalls atomic.Int64
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Descriptor() adapter.Descriptor {
	return adapter.Descriptor{
		Name:       f.name,
		SourceType: f.sourceType,
		DefaultTTL: time.Hour,
		Timeout:    time.Second,
		MaxRetries: 1,
	}
}

func (f *fakeAdapter) Fetch(ctx context.Context, topic string, limit int) ([]adapter.RawItem, error) {
	f.fetchCalls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeAdapter) Normalize(item adapter.RawItem) (models.NormalizedContent, error) {
	return models.NormalizedContent{
		Source:     f.name,
		SourceType: f.sourceType,
		Title:      item["title"].(string),
		Content:    item["content"].(string),
		URL:        item["url"].(string),
	}, nil
}

func newFake(name string) *fakeAdapter {
	return &fakeAdapter{
		name:       name,
		sourceType: models.SourceTypeText,
		items: []adapter.RawItem{
			{"title": name + " title", "content": name + " content", "url": "https://" + name + ".example/a"},
		},
	}
}

type fakeArchive struct {
	lessons []*models.LessonRecord
	err     error
	calls   int
}

func (f *fakeArchive) SearchByTopic(ctx context.Context, topic string, limit int) ([]*models.LessonRecord, error) {
	f.calls++
	return f.lessons, f.err
}

func newTestOrchestrator(archive ArchiveSearcher, adapters ...adapter.SourceAdapter) *Orchestrator {
	registry := adapter.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	c := cache.NewContentCache(time.Hour, testLogger())
	m := metrics.New(prometheus.NewRegistry())
	return New(registry, c, fastRetryConfig(), archive, m, testLogger())
}

func TestFetchMultiSource_MergesAcrossAdapters(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	o := newTestOrchestrator(nil, wiki, rss)

	items := o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)

	assert.Equal(t, 2, models.UniqueSourceCount(items))
	assert.Equal(t, int64(1), wiki.fetchCalls.Load())
	assert.Equal(t, int64(1), rss.fetchCalls.Load())
}

func TestFetchMultiSource_SecondCallServedFromCache(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	o := newTestOrchestrator(nil, wiki, rss)

	first := o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)
	second := o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), wiki.fetchCalls.Load(), "cache hit must not refetch")
	assert.Equal(t, int64(1), rss.fetchCalls.Load(), "cache hit must not refetch")
}

func TestFetchCached_ConcurrentMissesCollapse(t *testing.T) {
	wiki := newFake("wikipedia")
	wiki.delay = 50 * time.Millisecond
	o := newTestOrchestrator(nil, wiki)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := o.fetchCached(context.Background(), "wikipedia", "gravity", 3)
			assert.NoError(t, err)
			assert.Len(t, items, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wiki.fetchCalls.Load(), "concurrent misses for one key must share a single fetch")
}

func TestFetchMultiSource_PartialFailureIsolated(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	rss.err = errors.New("feed unreachable")
	o := newTestOrchestrator(nil, wiki, rss)

	items := o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)

	require.Len(t, items, 1)
	assert.Equal(t, "wikipedia", items[0].Source)
}

func TestFetchWithFallback_CompleteOnTierOne(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	o := newTestOrchestrator(nil, wiki, rss)

	out := o.FetchWithFallback(context.Background(), FallbackRequest{
		Field:      "unknown-field",
		Topic:      "gravity",
		MinSources: 2,
	})

	assert.Equal(t, models.CompletenessComplete, out.Completeness)
	assert.Equal(t, 2, out.UniqueSourceCount)
}

func TestFetchWithFallback_BaselineTopUp(t *testing.T) {
	// Every field-specific adapter fails; the wikipedia baseline rescues
	// the fetch in tier 2 when tier 1 attempts only cover failing sources.
	hn := newFake("hackernews")
	hn.err = errors.New("api down")
	reddit := newFake("reddit")
	reddit.err = errors.New("api down")
	wiki := newFake("wikipedia")
	youtube := newFake("youtube")
	youtube.err = errors.New("api down")
	rss := newFake("rssfeed")
	rss.err = errors.New("api down")

	o := newTestOrchestrator(nil, hn, reddit, wiki, youtube, rss)

	// field "programming" resolves hackernews, reddit, wikipedia, youtube,
	// + rssfeed baseline. MinSources 1 with one attempt tries hackernews only,
	// so wikipedia is absent until the tier-2 top-up.
	out := o.FetchWithFallback(context.Background(), FallbackRequest{
		Field:       "programming",
		Topic:       "goroutines",
		MinSources:  1,
		MaxAttempts: 1,
	})

	assert.Equal(t, models.CompletenessComplete, out.Completeness)
	assert.Equal(t, 1, out.UniqueSourceCount)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "wikipedia", out.Items[0].Source)
}

func TestFetchWithFallback_ArchiveTier(t *testing.T) {
	wiki := newFake("wikipedia")
	wiki.err = errors.New("api down")
	rss := newFake("rssfeed")
	rss.err = errors.New("api down")

	archive := &fakeArchive{
		lessons: []*models.LessonRecord{
			{ID: "11111111-1111-1111-1111-111111111111", Field: "science", Topic: "gravity", Title: "Gravity basics", Content: "archived lesson"},
		},
	}
	o := newTestOrchestrator(archive, wiki, rss)

	out := o.FetchWithFallback(context.Background(), FallbackRequest{
		Field:       "unknown-field",
		Topic:       "gravity",
		MinSources:  2,
		MaxAttempts: 2,
	})

	assert.Equal(t, models.CompletenessInternalFallback, out.Completeness)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "internal_archive", out.Items[0].Source)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", out.Items[0].Metadata["lesson_id"])
	assert.Equal(t, 1, archive.calls)
}

func TestFetchWithFallback_NeverRaises(t *testing.T) {
	wiki := newFake("wikipedia")
	wiki.err = errors.New("api down")
	rss := newFake("rssfeed")
	rss.err = errors.New("api down")

	archive := &fakeArchive{err: errors.New("db down")}
	o := newTestOrchestrator(archive, wiki, rss)

	out := o.FetchWithFallback(context.Background(), FallbackRequest{
		Field:      "unknown-field",
		Topic:      "gravity",
		MinSources: 2,
	})

	assert.Equal(t, models.CompletenessPartial, out.Completeness)
	assert.Empty(t, out.Items)
}

func TestFetchWithPartialSuccess(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	rss.err = errors.New("api down")
	o := newTestOrchestrator(nil, wiki, rss)

	items, complete := o.FetchWithPartialSuccess(context.Background(), FallbackRequest{
		Field:      "unknown-field",
		Topic:      "gravity",
		MinSources: 2,
	})

	assert.False(t, complete)
	assert.Len(t, items, 1)
}

func TestInvalidateField(t *testing.T) {
	wiki := newFake("wikipedia")
	rss := newFake("rssfeed")
	o := newTestOrchestrator(nil, wiki, rss)

	o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)
	require.Equal(t, 2, o.CacheStats().Size)

	removed := o.InvalidateField("unknown-field", "gravity")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, o.CacheStats().Size)

	// Refetch repopulates, proving invalidation forced a fresh fetch.
	o.FetchMultiSource(context.Background(), "unknown-field", "gravity", 2, 3)
	assert.Equal(t, int64(2), wiki.fetchCalls.Load())
}

func TestAdaptersForField(t *testing.T) {
	tests := map[string]struct {
		field string
		want  []string
	}{
		"recognized field appends baselines": {
			field: "programming",
			want:  []string{"hackernews", "reddit", "wikipedia", "youtube", "rssfeed"},
		},
		"unknown field gets baseline pair": {
			field: "gardening",
			want:  []string{"wikipedia", "rssfeed"},
		},
		"field already containing baselines has no duplicates": {
			field: "finance",
			want:  []string{"wikipedia", "alphavantage", "newsapi", "rssfeed"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, adaptersForField(tc.field))
		})
	}
}

func TestDedupeItems(t *testing.T) {
	items := []models.NormalizedContent{
		{Source: "newsapi", URL: "https://a.example", Title: "Same story"},
		{Source: "newsapi", URL: "https://a.example", Title: "Same story"},
		{Source: "rssfeed", URL: "https://a.example", Title: "Same story"},
	}

	deduped := dedupeItems(items)
	assert.Len(t, deduped, 2, "same record from the same source collapses, cross-source survives")
}

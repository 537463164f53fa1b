// ABOUTME: This file implements the in-memory content cache with per-source TTL
// ABOUTME: All entry-map access is serialized through a single mutex
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrewvu270/MindForge-sub000/models"
)

type entry struct {
	value     []models.NormalizedContent
	source    string
	topic     string
	expiresAt time.Time
}

// ContentCache is a thread-safe in-memory cache keyed by (source, topic,
// params). It is the only shared resource mutated by concurrently in-flight
// fetches; one cache instance is shared across all orchestration calls.
type ContentCache struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	defaultTTL time.Duration
	sourceTTLs map[string]time.Duration
	hits       uint64
	misses     uint64
	logger     *slog.Logger
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size           int     `json:"size"`
	Hits           uint64  `json:"hits"`
	Misses         uint64  `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

func NewContentCache(defaultTTL time.Duration, logger *slog.Logger) *ContentCache {
	return &ContentCache{
		entries:    make(map[string]*entry),
		defaultTTL: defaultTTL,
		sourceTTLs: make(map[string]time.Duration),
		logger:     logger,
	}
}

// SetSourceTTL registers the default TTL for one source. Live data (stock
// quotes) uses seconds, encyclopedic text uses hours.
func (c *ContentCache) SetSourceTTL(source string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceTTLs[source] = ttl
}

// Key derives the deterministic cache key for (source, topic, params).
// Params are serialized in sorted field order so logically identical requests
// map to the same slot regardless of call-site ordering.
func Key(source, topic string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(source)
	b.WriteByte('|')
	b.WriteString(topic)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached value for (source, topic, params), or ok=false on a
// miss. An entry found expired is deleted and counted as a miss.
func (c *ContentCache) Get(source, topic string, params map[string]string) ([]models.NormalizedContent, bool) {
	key := Key(source, topic, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found {
		c.misses++
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return e.value, true
}

// Set stores value under (source, topic, params). A zero ttl falls back to
// the source's registered TTL, then to the cache default.
func (c *ContentCache) Set(source, topic string, value []models.NormalizedContent, ttl time.Duration, params map[string]string) {
	key := Key(source, topic, params)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		if sourceTTL, ok := c.sourceTTLs[source]; ok {
			ttl = sourceTTL
		} else {
			ttl = c.defaultTTL
		}
	}

	c.entries[key] = &entry{
		value:     value,
		source:    source,
		topic:     topic,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate removes the single entry for (source, topic, params).
func (c *ContentCache) Invalidate(source, topic string, params map[string]string) {
	key := Key(source, topic, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateSource removes every entry belonging to one source.
func (c *ContentCache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.source == source {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateSourceTopic removes every entry for one (source, topic) pair,
// regardless of the params the entries were stored under.
func (c *ContentCache) InvalidateSourceTopic(source, topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.source == source && e.topic == topic {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateTopic removes the topic's entries across every source.
func (c *ContentCache) InvalidateTopic(topic string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.topic == topic {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Used after a known upstream content refresh.
// Hit/miss counters are preserved; they persist for the cache's lifetime.
func (c *ContentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// ResetStats zeroes the hit/miss counters.
func (c *ContentCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
}

// SweepExpired removes every expired entry and reports how many were dropped.
func (c *ContentCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *ContentCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100.0
	}

	return Stats{
		Size:           len(c.entries),
		Hits:           c.hits,
		Misses:         c.misses,
		HitRatePercent: rate,
	}
}

// RunSweeper periodically evicts expired entries until ctx is cancelled.
func (c *ContentCache) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.SweepExpired(); removed > 0 {
				c.logger.Debug("cache sweep completed", "removed", removed)
			}
		}
	}
}

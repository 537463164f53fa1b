// ABOUTME: This file defines the source adapter capability set and registry
// ABOUTME: Each external provider implements Fetch + Normalize behind one interface
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrewvu270/MindForge-sub000/models"
)

// PlaceholderTitle substitutes for providers that return untitled items.
const PlaceholderTitle = "(untitled)"

// RawItem is one provider record before normalization. Provider response
// shapes vary arbitrarily, so raw items stay schemaless until Normalize.
type RawItem map[string]any

// Descriptor is the static per-adapter policy used to parameterize the cache
// and the retry executor without embedding policy in adapter logic.
type Descriptor struct {
	Name       string
	SourceType models.SourceType
	DefaultTTL time.Duration
	Timeout    time.Duration
	MaxRetries int
}

// SourceAdapter is the capability set every provider implements.
// Fetch may fail on network or API errors and is bounded by the descriptor
// timeout. Normalize is pure: it performs no I/O and degrades missing fields
// to empty values instead of failing.
type SourceAdapter interface {
	Name() string
	Descriptor() Descriptor
	Fetch(ctx context.Context, topic string, limit int) ([]RawItem, error)
	Normalize(item RawItem) (models.NormalizedContent, error)
}

// FetchAndNormalize fetches raw items and normalizes each one individually.
// A malformed item is logged and discarded; it never aborts the batch.
// Fetch errors propagate unchanged so the retry executor owns retry policy.
func FetchAndNormalize(ctx context.Context, a SourceAdapter, topic string, limit int, logger *slog.Logger) ([]models.NormalizedContent, error) {
	raw, err := a.Fetch(ctx, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s failed: %w", a.Name(), err)
	}

	desc := a.Descriptor()
	normalized := make([]models.NormalizedContent, 0, len(raw))
	for i, item := range raw {
		content, err := a.Normalize(item)
		if err != nil {
			logger.Warn("discarding malformed item",
				"adapter", a.Name(),
				"topic", topic,
				"index", i,
				"error", err)
			continue
		}

		// Enforce the normalization invariants centrally.
		if content.Source == "" {
			content.Source = desc.Name
		}
		if content.SourceType == "" {
			content.SourceType = desc.SourceType
		}
		if content.Title == "" {
			content.Title = PlaceholderTitle
		}
		if content.FetchedAt.IsZero() {
			content.FetchedAt = time.Now().UTC()
		}

		normalized = append(normalized, content)
	}

	return normalized, nil
}

// Registry holds the configured adapters by name. It is built once during
// wiring and read-only afterwards, so lookups need no locking.
type Registry struct {
	adapters map[string]SourceAdapter
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]SourceAdapter)}
}

func (r *Registry) Register(a SourceAdapter) {
	name := a.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
}

func (r *Registry) Get(name string) (SourceAdapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered adapter names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Len() int {
	return len(r.adapters)
}

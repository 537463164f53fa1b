// ABOUTME: This file maps content events onto cache invalidation operations
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// EventType constants.
const (
	EventTypeContentRefreshed = "ContentRefreshed"
	EventTypeContentReindexed = "ContentReindexed"
)

// ContentRefreshedPayload signals that upstream content for a topic changed
// and any cached fetch results for it are stale.
type ContentRefreshedPayload struct {
	Field string `json:"field"`
	Topic string `json:"topic"`
}

// ContentReindexedPayload signals a bulk upstream change that invalidates
// everything cached so far.
type ContentReindexedPayload struct {
	Reason string `json:"reason"`
}

// CacheInvalidator is the orchestrator surface the handler drives.
type CacheInvalidator interface {
	// InvalidateField drops cached entries for a field/topic pairing.
	InvalidateField(field, topic string) int
	// InvalidateTopic drops cached entries for a topic across all sources.
	InvalidateTopic(topic string) int
	// InvalidateAll clears the whole cache.
	InvalidateAll()
}

// ContentEventHandler handles content lifecycle events.
type ContentEventHandler struct {
	invalidator CacheInvalidator
	logger      *slog.Logger
}

// NewContentEventHandler creates a new ContentEventHandler.
func NewContentEventHandler(invalidator CacheInvalidator, logger *slog.Logger) *ContentEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentEventHandler{
		invalidator: invalidator,
		logger:      logger,
	}
}

// HandleEvent processes a single event based on its type.
func (h *ContentEventHandler) HandleEvent(ctx context.Context, event Event) error {
	h.logger.Info("handling event",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"source", event.Source,
	)

	switch event.EventType {
	case EventTypeContentRefreshed:
		return h.handleContentRefreshed(event)
	case EventTypeContentReindexed:
		return h.handleContentReindexed(event)
	default:
		// Unknown events are acknowledged, not retried.
		h.logger.Warn("ignoring unknown event type", "event_type", event.EventType)
		return nil
	}
}

func (h *ContentEventHandler) handleContentRefreshed(event Event) error {
	var payload ContentRefreshedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode ContentRefreshed payload: %w", err)
	}
	if payload.Topic == "" {
		return fmt.Errorf("ContentRefreshed event %s has no topic", event.EventID)
	}

	var removed int
	if payload.Field != "" {
		removed = h.invalidator.InvalidateField(payload.Field, payload.Topic)
	} else {
		removed = h.invalidator.InvalidateTopic(payload.Topic)
	}

	h.logger.Info("invalidated cached content",
		"field", payload.Field,
		"topic", payload.Topic,
		"removed", removed,
	)
	return nil
}

func (h *ContentEventHandler) handleContentReindexed(event Event) error {
	var payload ContentReindexedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode ContentReindexed payload: %w", err)
	}

	h.invalidator.InvalidateAll()
	h.logger.Info("cleared content cache", "reason", payload.Reason)
	return nil
}

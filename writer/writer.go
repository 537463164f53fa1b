// ABOUTME: This file implements the idempotent lesson writer
// ABOUTME: Regenerates identity on duplicate keys; retries transient storage failures with backoff
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
	"github.com/andrewvu270/MindForge-sub000/retry"
)

// LessonStore is the persistence collaborator the writer drives.
type LessonStore interface {
	Upsert(ctx context.Context, lesson *models.LessonRecord) error
}

// Config bounds the writer's retry behavior. Timeout-class failures back off
// from twice the base delay; other transient failures from the base delay.
// Both schedules double per attempt.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
	}
}

// IdempotentWriter persists generated artifacts durably despite transient
// storage failures and duplicate-key races. The generation pipeline runs
// unattended; a silent write failure would invisibly lose an entire artifact.
type IdempotentWriter struct {
	store  LessonStore
	config Config
	logger *slog.Logger
}

func NewIdempotentWriter(store LessonStore, config Config, logger *slog.Logger) *IdempotentWriter {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultConfig().MaxRetries
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultConfig().BaseDelay
	}
	return &IdempotentWriter{store: store, config: config, logger: logger}
}

// Store upserts the record. Duplicate-key conflicts regenerate the record's
// identifier and retry immediately; transient storage errors retry with
// doubling backoff. Only retry exhaustion (or a permanent error) surfaces,
// wrapped in domain.ErrStorageExhausted so callers can alert.
func (w *IdempotentWriter) Store(ctx context.Context, record *models.LessonRecord) error {
	var lastErr error
	transientFailures := 0

	for attempt := 1; attempt <= w.config.MaxRetries; attempt++ {
		lastErr = w.store.Upsert(ctx, record)
		if lastErr == nil {
			if attempt > 1 {
				w.logger.Info("lesson stored after retry",
					"lesson_id", record.ID,
					"attempt", attempt)
			}
			return nil
		}

		if errors.Is(lastErr, domain.ErrDuplicateKey) {
			// An identifier race, not data loss: regenerate and go again
			// without consuming backoff time.
			oldID := record.ID
			record.RegenerateID()
			w.logger.Warn("duplicate key on store, regenerated identifier",
				"old_id", oldID,
				"new_id", record.ID,
				"attempt", attempt)
			continue
		}

		if !retry.IsRetryableError(lastErr) {
			return fmt.Errorf("permanent storage failure: %w", lastErr)
		}

		transientFailures++
		if attempt == w.config.MaxRetries {
			break
		}

		delay := w.backoffDelay(lastErr, transientFailures)
		w.logger.Warn("transient storage failure, backing off",
			"lesson_id", record.ID,
			"attempt", attempt,
			"delay", delay,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("store cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w after %d attempts: %s", domain.ErrStorageExhausted, w.config.MaxRetries, lastErr)
}

// backoffDelay doubles per transient failure; timeouts start from twice the
// base delay since the storage backend is already known to be slow.
func (w *IdempotentWriter) backoffDelay(err error, failures int) time.Duration {
	base := w.config.BaseDelay
	if isTimeoutError(err) {
		base = 2 * w.config.BaseDelay
	}
	return base << (failures - 1)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

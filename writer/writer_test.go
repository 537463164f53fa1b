// ABOUTME: This file tests the idempotent writer: duplicate-key regeneration, backoff, exhaustion
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func fastWriterConfig() Config {
	return Config{
		MaxRetries: 5,
		BaseDelay:  time.Millisecond,
	}
}

// scriptedStore returns each queued error in order, then succeeds.
type scriptedStore struct {
	errs    []error
	calls   int
	seenIDs []string
}

func (s *scriptedStore) Upsert(ctx context.Context, lesson *models.LessonRecord) error {
	s.seenIDs = append(s.seenIDs, lesson.ID)
	s.calls++
	if s.calls <= len(s.errs) {
		return s.errs[s.calls-1]
	}
	return nil
}

func TestIdempotentWriter_Store(t *testing.T) {
	transient := &domain.HTTPError{StatusCode: 503, Message: "unavailable"}
	duplicate := fmt.Errorf("%w: lessons_pkey", domain.ErrDuplicateKey)
	permanent := errors.New("relation does not exist")

	tests := map[string]struct {
		errs          []error
		expectedCalls int
		wantErr       error
	}{
		"first attempt succeeds": {
			errs:          nil,
			expectedCalls: 1,
		},
		"transient error retried to success": {
			errs:          []error{transient, transient},
			expectedCalls: 3,
		},
		"permanent error fails immediately": {
			errs:          []error{permanent},
			expectedCalls: 1,
			wantErr:       permanent,
		},
		"exhaustion surfaces storage exhausted": {
			errs:          []error{transient, transient, transient, transient, transient},
			expectedCalls: 5,
			wantErr:       domain.ErrStorageExhausted,
		},
		"duplicate keys resolved within budget": {
			errs:          []error{duplicate, duplicate},
			expectedCalls: 3,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			store := &scriptedStore{errs: tc.errs}
			w := NewIdempotentWriter(store, fastWriterConfig(), testLogger())

			record := models.NewLessonRecord("science", "gravity", "Gravity", "lesson text")
			err := w.Store(context.Background(), record)

			assert.Equal(t, tc.expectedCalls, store.calls)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIdempotentWriter_DuplicateKeyRegeneratesID(t *testing.T) {
	duplicate := fmt.Errorf("%w: lessons_pkey", domain.ErrDuplicateKey)
	store := &scriptedStore{errs: []error{duplicate}}
	w := NewIdempotentWriter(store, fastWriterConfig(), testLogger())

	record := models.NewLessonRecord("science", "gravity", "Gravity", "lesson text")
	originalID := record.ID

	require.NoError(t, w.Store(context.Background(), record))

	require.Len(t, store.seenIDs, 2)
	assert.Equal(t, originalID, store.seenIDs[0])
	assert.NotEqual(t, originalID, store.seenIDs[1], "duplicate key must regenerate the identifier")
	assert.Equal(t, record.ID, store.seenIDs[1])
}

func TestIdempotentWriter_TimeoutBackoffDoubled(t *testing.T) {
	w := NewIdempotentWriter(&scriptedStore{}, Config{MaxRetries: 5, BaseDelay: 100 * time.Millisecond}, testLogger())

	timeout := context.DeadlineExceeded
	other := &domain.HTTPError{StatusCode: 503, Message: "unavailable"}

	assert.Equal(t, 200*time.Millisecond, w.backoffDelay(timeout, 1))
	assert.Equal(t, 400*time.Millisecond, w.backoffDelay(timeout, 2))
	assert.Equal(t, 100*time.Millisecond, w.backoffDelay(other, 1))
	assert.Equal(t, 200*time.Millisecond, w.backoffDelay(other, 2))
}

func TestIdempotentWriter_ContextCancelledDuringBackoff(t *testing.T) {
	transient := &domain.HTTPError{StatusCode: 503, Message: "unavailable"}
	store := &scriptedStore{errs: []error{transient, transient, transient, transient, transient}}
	w := NewIdempotentWriter(store, Config{MaxRetries: 5, BaseDelay: 200 * time.Millisecond}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := w.Store(ctx, models.NewLessonRecord("science", "gravity", "Gravity", "text"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.calls)
}

// ABOUTME: This file tests the retry executor and backoff behavior
package retry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewvu270/MindForge-sub000/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts:   maxAttempts,
		BaseDelay:     1 * time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

func TestRetrier_Do(t *testing.T) {
	retryable := &domain.HTTPError{StatusCode: 503, Message: "unavailable"}
	fatal := &domain.HTTPError{StatusCode: 404, Message: "not found"}

	tests := map[string]struct {
		failures      int
		failWith      error
		maxAttempts   int
		expectedCalls int
		wantErr       bool
		wantErrMsg    string
	}{
		"success on first attempt": {
			failures:      0,
			maxAttempts:   3,
			expectedCalls: 1,
			wantErr:       false,
		},
		"success on second attempt": {
			failures:      1,
			failWith:      retryable,
			maxAttempts:   3,
			expectedCalls: 2,
			wantErr:       false,
		},
		"failure after max attempts": {
			failures:      5,
			failWith:      retryable,
			maxAttempts:   3,
			expectedCalls: 3,
			wantErr:       true,
			wantErrMsg:    "after 3 attempts",
		},
		"fatal error fails immediately": {
			failures:      5,
			failWith:      fatal,
			maxAttempts:   3,
			expectedCalls: 1,
			wantErr:       true,
			wantErrMsg:    "after 1 attempts",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			retrier := NewRetrier(fastConfig(tc.maxAttempts), nil, testLogger())

			calls := 0
			err := retrier.Do(context.Background(), func(ctx context.Context) error {
				calls++
				if calls <= tc.failures {
					return tc.failWith
				}
				return nil
			})

			assert.Equal(t, tc.expectedCalls, calls)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrMsg, "error must report the attempts actually made")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRetrier_Do_CustomClassifier(t *testing.T) {
	nothingRetryable := func(error) bool { return false }
	retrier := NewRetrier(fastConfig(3), nothingRetryable, testLogger())

	calls := 0
	err := retrier.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "custom classifier should stop retries")
}

func TestRetrier_Do_ContextCancellation(t *testing.T) {
	retrier := NewRetrier(Config{
		MaxAttempts:   10,
		BaseDelay:     200 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := retrier.Do(ctx, func(ctx context.Context) error {
		calls++
		return &domain.HTTPError{StatusCode: 500, Message: "boom"}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation during backoff should stop further attempts")
}

func TestRetrier_DoWithTimeout(t *testing.T) {
	retrier := NewRetrier(fastConfig(2), nil, testLogger())

	calls := 0
	err := retrier.DoWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		calls++
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls, "deadline exceeded is retryable, so both attempts run")
}

func TestRetrier_delayFor_CappedAtMaxDelay(t *testing.T) {
	retrier := NewRetrier(Config{
		MaxAttempts:   10,
		BaseDelay:     time.Second,
		MaxDelay:      3 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0,
	}, nil, testLogger())

	for attempt := 1; attempt <= 8; attempt++ {
		delay := retrier.delayFor(attempt)
		assert.LessOrEqual(t, delay, 3*time.Second, "attempt %d", attempt)
		assert.Positive(t, delay)
	}
}

// ABOUTME: This file implements the shared retry executor with exponential backoff and jitter
// ABOUTME: Reused by every source adapter fetch and by the synthesis client backends
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Config parameterizes a Retrier. The delay schedule is exponential:
// BaseDelay, BaseDelay*BackoffFactor, ... clamped at MaxDelay.
type Config struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

// DefaultConfig matches the platform-wide retry policy: three attempts with
// delays of roughly 1s, 2s, 4s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		BaseDelay:     1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.1,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// Retrier runs operations under a bounded retry policy.
type Retrier struct {
	config      Config
	isRetryable ErrorClassifier
	logger      *slog.Logger
}

func NewRetrier(config Config, classifier ErrorClassifier, logger *slog.Logger) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if classifier == nil {
		classifier = IsRetryableError
	}
	return &Retrier{
		config:      config,
		isRetryable: classifier,
		logger:      logger,
	}
}

// Do runs operation until it succeeds, the attempt budget is exhausted, or a
// non-retryable error is returned. The wait between attempts is cancellable
// through ctx; the last error is surfaced on exhaustion.
func (r *Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error
	var totalWait time.Duration
	attempts := 0

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		attempts = attempt
		lastErr = operation(ctx)
		if lastErr == nil {
			if attempt > 1 {
				r.logger.Info("operation succeeded after retry",
					"attempt", attempt,
					"total_wait_ms", totalWait.Milliseconds())
			}
			return nil
		}

		retryable := r.isRetryable(lastErr)
		r.logger.Warn("operation attempt failed",
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"retryable", retryable,
			"error", lastErr)

		if attempt == r.config.MaxAttempts || !retryable {
			break
		}

		delay := r.delayFor(attempt)
		totalWait += delay

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", attempts, lastErr)
}

// DoWithTimeout bounds each attempt independently with attemptTimeout, so a
// hung call fails that attempt without consuming the whole retry budget.
func (r *Retrier) DoWithTimeout(ctx context.Context, attemptTimeout time.Duration, operation func(ctx context.Context) error) error {
	return r.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()
		return operation(attemptCtx)
	})
}

func (r *Retrier) delayFor(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	// ジッター追加（サンダリングハード防止）
	jitter := 1.0 + (rand.Float64()-0.5)*r.config.JitterFactor
	delay *= jitter

	return time.Duration(delay)
}

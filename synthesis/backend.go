// ABOUTME: This file defines generation backends and the try-in-order combinator
// ABOUTME: Each backend is wrapped by the shared retry executor before the next is tried
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andrewvu270/MindForge-sub000/domain"
	"github.com/andrewvu270/MindForge-sub000/retry"
)

// Backend is one text-generation strategy. Backends are tried in
// configuration order until one succeeds or all are exhausted.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// tryInOrder runs each backend under the retrier with a per-attempt timeout.
// The first success wins; per-backend failures are logged and the next
// strategy is tried.
func tryInOrder(ctx context.Context, backends []Backend, retrier *retry.Retrier, timeout time.Duration, prompt string, logger *slog.Logger) (string, error) {
	var errs []error

	for _, backend := range backends {
		var output string
		err := retrier.DoWithTimeout(ctx, timeout, func(ctx context.Context) error {
			generated, err := backend.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			if strings.TrimSpace(generated) == "" {
				return domain.ErrEmptyGeneration
			}
			output = generated
			return nil
		})
		if err == nil {
			return output, nil
		}

		logger.Warn("synthesis backend exhausted, trying next",
			"backend", backend.Name(),
			"error", err)
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: %s", domain.ErrAllBackendsFailed, errors.Join(errs...))
}

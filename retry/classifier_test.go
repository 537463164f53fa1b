// ABOUTME: This file tests the retryable-versus-fatal error classification
package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewvu270/MindForge-sub000/domain"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want bool
	}{
		"nil is not retryable": {
			err:  nil,
			want: false,
		},
		"cancellation is fatal": {
			err:  context.Canceled,
			want: false,
		},
		"deadline exceeded is transient": {
			err:  context.DeadlineExceeded,
			want: true,
		},
		"connection refused is transient": {
			err:  &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			want: true,
		},
		"connection reset is transient": {
			err:  &net.OpError{Op: "read", Err: syscall.ECONNRESET},
			want: true,
		},
		"network timeout is transient": {
			err:  timeoutNetError{},
			want: true,
		},
		"http 500 is transient": {
			err:  &domain.HTTPError{StatusCode: 500, Message: "internal"},
			want: true,
		},
		"http 503 is transient": {
			err:  &domain.HTTPError{StatusCode: 503, Message: "unavailable"},
			want: true,
		},
		"http 429 is transient": {
			err:  &domain.HTTPError{StatusCode: 429, Message: "rate limited"},
			want: true,
		},
		"http 408 is transient": {
			err:  &domain.HTTPError{StatusCode: 408, Message: "request timeout"},
			want: true,
		},
		"http 404 is fatal": {
			err:  &domain.HTTPError{StatusCode: 404, Message: "not found"},
			want: false,
		},
		"http 401 is fatal": {
			err:  &domain.HTTPError{StatusCode: 401, Message: "unauthorized"},
			want: false,
		},
		"plain error is fatal": {
			err:  errors.New("malformed payload"),
			want: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryableError(tc.err))
		})
	}
}

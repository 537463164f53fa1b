// ABOUTME: This file classifies errors for retry decisions
// ABOUTME: Distinguishes between transient and permanent errors for resilient fetching
package retry

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/andrewvu270/MindForge-sub000/domain"
)

// IsRetryableError determines if an error should trigger a retry.
// Timeout-class and rate-limit-class errors are retried identically;
// cancellation and client errors are fatal.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// コンテキストキャンセルはリトライ不可
	if errors.Is(err, context.Canceled) {
		return false
	}

	// タイムアウトは一時的エラーとしてリトライ
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Err != nil {
			if errno, ok := opErr.Err.(syscall.Errno); ok {
				return errno == syscall.ECONNREFUSED ||
					errno == syscall.ECONNRESET ||
					errno == syscall.ETIMEDOUT
			}
		}
		if opErr.Timeout() {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTPStatus(httpErr.StatusCode)
	}

	// その他は永続的エラーとみなす
	return false
}

// isRetryableHTTPStatus determines if an HTTP status code is retryable.
func isRetryableHTTPStatus(status int) bool {
	switch {
	case status >= 500 && status <= 599:
		return true
	case status == 408: // Request Timeout
		return true
	case status == 429: // Too Many Requests
		return true
	default:
		// 4xxクライアントエラーはリトライ不可
		return false
	}
}

// ABOUTME: Domain-level sentinel errors for the content-hub service
// ABOUTME: These errors are used with errors.Is() for error type checking
package domain

import (
	"errors"
	"fmt"
)

// Adapter-related errors
var (
	// ErrAdapterNotFound indicates no adapter is registered under the requested name
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrMissingCredentials indicates a required API credential was absent at construction
	ErrMissingCredentials = errors.New("missing required credentials")

	// ErrMalformedItem indicates a single raw item could not be normalized.
	// Discarded per item; never fails the whole batch.
	ErrMalformedItem = errors.New("malformed item")

	// ErrNoContent indicates a provider responded successfully but returned nothing usable
	ErrNoContent = errors.New("no content returned")
)

// Storage-related errors
var (
	// ErrDuplicateKey indicates an upsert hit an identifier conflict.
	// Resolved by regenerating identity, never surfaced to callers.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStorageExhausted indicates all write retries failed. Fatal, alertable.
	ErrStorageExhausted = errors.New("storage retries exhausted")
)

// Synthesis-related errors
var (
	// ErrAllBackendsFailed indicates every configured generation backend was exhausted
	ErrAllBackendsFailed = errors.New("all synthesis backends failed")

	// ErrEmptyGeneration indicates the model produced empty or whitespace output. Non-retryable.
	ErrEmptyGeneration = errors.New("generation produced empty output")
)

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

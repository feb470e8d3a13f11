package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrBudgetExceeded indicates the question and instructions alone
	// do not fit in the context budget.
	ErrBudgetExceeded = errors.New("context budget exceeded")

	// ErrStreamAborted indicates a streamed answer was cancelled or failed mid-flight.
	ErrStreamAborted = errors.New("answer stream aborted")

	// Per-document failures. These are recovered locally and never abort a request.

	// ErrExtractionFailed indicates a document's text could not be extracted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrJudgmentFailed indicates an LLM relevance judgement could not be parsed.
	ErrJudgmentFailed = errors.New("judgment failed")

	// Upstream Errors.

	// ErrUpstreamUnavailable indicates a remote service is unreachable or failing.
	// Errors wrapping it are retryable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication Errors.

	// ErrAuthRequired indicates no credential is available for the document store.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the credential has expired or was revoked.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the OAuth exchange was rejected.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrInvalidTransition indicates an event that is not valid in the current connection state.
	ErrInvalidTransition = errors.New("invalid connection state transition")
)

// UpstreamError describes a failed call to a remote service.
// It unwraps to ErrRateLimited for throttling responses and to
// ErrUpstreamUnavailable otherwise, so callers can match with errors.Is.
type UpstreamError struct {
	// Service names the remote service (e.g. "dropbox", "gemini").
	Service string

	// StatusCode is the HTTP status when known, 0 otherwise.
	StatusCode int

	// Message is a human-readable description from the service.
	Message string

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s unavailable (status %d): %s", e.Service, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Service, msg)
}

// Unwrap exposes both the sentinel kind and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	kind := ErrUpstreamUnavailable
	if e.StatusCode == 429 {
		kind = ErrRateLimited
	}
	if e.Err != nil {
		return []error{kind, e.Err}
	}
	return []error{kind}
}

// Retryable reports whether the failed call may succeed if repeated.
func (e *UpstreamError) Retryable() bool {
	return true
}

// IsRetryable reports whether err is tagged as a retryable upstream condition.
// Input, authentication and not-found errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrAuthExpired) ||
		errors.Is(err, ErrAuthRequired) || errors.Is(err, ErrNotFound) {
		return false
	}
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrRateLimited)
}

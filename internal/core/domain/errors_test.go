package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrBudgetExceeded", ErrBudgetExceeded},
		{"ErrStreamAborted", ErrStreamAborted},
		{"ErrExtractionFailed", ErrExtractionFailed},
		{"ErrJudgmentFailed", ErrJudgmentFailed},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrAuthRequired", ErrAuthRequired},
		{"ErrAuthExpired", ErrAuthExpired},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrInvalidTransition", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestUpstreamError_Is(t *testing.T) {
	err := &UpstreamError{Service: "gemini", StatusCode: 503, Message: "overloaded"}

	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, "gemini unavailable (status 503): overloaded", err.Error())
}

func TestUpstreamError_RateLimited(t *testing.T) {
	err := &UpstreamError{Service: "dropbox", StatusCode: 429}

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.True(t, err.Retryable())
}

func TestUpstreamError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("list files: %w", &UpstreamError{Service: "dropbox", Err: cause})

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "connection reset")

	var upstream *UpstreamError
	assert.True(t, errors.As(err, &upstream))
	assert.Equal(t, "dropbox", upstream.Service)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"upstream", &UpstreamError{Service: "x"}, true},
		{"rate limited", fmt.Errorf("wrap: %w", ErrRateLimited), true},
		{"invalid input", ErrInvalidInput, false},
		{"auth expired", fmt.Errorf("download: %w", ErrAuthExpired), false},
		{"not found", ErrNotFound, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

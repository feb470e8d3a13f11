package dropbox

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/auth"

	"github.com/custodia-labs/coach/internal/core/domain"
)

const serviceName = "dropbox"

// classify maps an SDK error onto the domain error vocabulary.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) || errors.Is(err, domain.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var authErr auth.AuthAPIError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%s: %s: %w", op, authErr.ErrorSummary, domain.ErrAuthExpired)
	}

	var rateErr auth.RateLimitAPIError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %w", op, &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: http.StatusTooManyRequests,
			Message:    rateErr.ErrorSummary,
		})
	}

	var internal dropbox.SDKInternalError
	if errors.As(err, &internal) {
		if internal.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%s: %w", op, domain.ErrAuthExpired)
		}
		return fmt.Errorf("%s: %w", op, &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: internal.StatusCode,
			Message:    internal.Content,
		})
	}

	// Route errors carry a summary such as "path/not_found/..".
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not_found"):
		return fmt.Errorf("%s: %s: %w", op, msg, domain.ErrNotFound)
	case strings.Contains(msg, "expired_access_token"), strings.Contains(msg, "invalid_access_token"):
		return fmt.Errorf("%s: %w", op, domain.ErrAuthExpired)
	case strings.Contains(msg, "malformed_path"), strings.Contains(msg, "unsupported_file"):
		return fmt.Errorf("%s: %s: %w", op, msg, domain.ErrInvalidInput)
	}

	return fmt.Errorf("%s: %w", op, &domain.UpstreamError{Service: serviceName, Err: err})
}

// retryAfter returns the pause requested by a throttling response, or zero.
func retryAfter(err error) time.Duration {
	var rateErr auth.RateLimitAPIError
	if errors.As(err, &rateErr) && rateErr.RateLimitError != nil {
		return time.Duration(rateErr.RateLimitError.RetryAfter) * time.Second
	}
	return 0
}

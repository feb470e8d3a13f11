package vertex

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// grpcToHTTP maps the gRPC codes Vertex AI returns onto HTTP statuses.
var grpcToHTTP = map[codes.Code]int{
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.NotFound:           http.StatusNotFound,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Internal:           http.StatusInternalServerError,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
}

// statusCode extracts an HTTP-equivalent status from a Google API error.
// It returns 0 when the error carries none.
func statusCode(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	if st, ok := status.FromError(err); ok {
		return grpcToHTTP[st.Code()]
	}
	return 0
}

// classify converts a Vertex AI error into a domain error.
func (s *LLMService) classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return fmt.Errorf("%w: vertex %v", domain.ErrInvalidInput, blocked)
	}

	code := statusCode(err)
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: vertex rejected the credentials: %v", domain.ErrLLMUnavailable, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: vertex model not found: %v", domain.ErrLLMUnavailable, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: vertex: %v", domain.ErrInvalidInput, err)
	case http.StatusTooManyRequests:
		s.limiter.RecordRateLimitError(0)
	}
	return &domain.UpstreamError{Service: serviceName, StatusCode: code, Err: err}
}

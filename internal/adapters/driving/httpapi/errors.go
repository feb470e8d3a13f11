package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/logger"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorCode maps a domain error to an HTTP status and a stable code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return http.StatusRequestEntityTooLarge, "budget_exceeded"
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "auth_required"
	case errors.Is(err, domain.ErrAuthExpired):
		return http.StatusUnauthorized, "auth_expired"
	case errors.Is(err, domain.ErrAuthInvalid), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "auth_invalid"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported_type"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, "llm_unavailable"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	if status == http.StatusInternalServerError {
		logger.Error("HTTP handler: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

// notConfigured answers 501 for routes whose port was not wired.
func notConfigured(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusNotImplemented, ErrorResponse{Error: name + " is not configured", Code: "not_configured"})
}

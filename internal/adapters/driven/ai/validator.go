package ai

import (
	"context"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks LLM settings by building the completion service
// they describe and pinging it once.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator that waits at most pingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout overrides how long a ping may take.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	v.timeout = d
	return v
}

// ValidateLLM returns nil when no provider is configured or when the
// provider answered. Failures wrap domain.ErrLLMUnavailable.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	svc, err := CreateAndValidateCompletionService(ctx, config)
	if err != nil {
		return err
	}
	if svc != nil {
		svc.Close()
	}
	return nil
}

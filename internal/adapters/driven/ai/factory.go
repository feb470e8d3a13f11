// Package ai provides factory functions for creating completion service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/coach/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/coach/internal/adapters/driven/llm/vertex"
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateCompletionService creates a completion service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateCompletionService(
	ctx context.Context,
	settings *domain.LLMSettings,
) (driven.CompletionService, error) {
	svc, err := CreateCompletionService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'coach settings set' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'coach settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateCompletionService creates the completion service named by settings.
// Returns nil if the provider is not configured.
func CreateCompletionService(ctx context.Context, settings *domain.LLMSettings) (driven.CompletionService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.LLMProviderGemini:
		return gemini.NewLLMService(gemini.LLMConfig{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	case domain.LLMProviderVertex:
		return vertex.NewLLMService(ctx, vertex.LLMConfig{
			Project:           settings.Project,
			Location:          settings.Location,
			Model:             settings.Model,
			RequestsPerSecond: settings.RequestsPerSecond,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

package driven

import "github.com/custodia-labs/coach/internal/core/domain"

// AIConfigValidator validates completion service configurations
// by testing connectivity to the provider.
type AIConfigValidator interface {
	// ValidateLLM pings the configured provider.
	// Returns nil if the configuration works.
	ValidateLLM(config *domain.LLMSettings) error
}

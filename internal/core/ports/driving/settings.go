package driving

import "github.com/custodia-labs/coach/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, applying defaults.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its dotted key (e.g. "scoring.term_weight").
	Set(key, value string) error

	// Keys lists the settable keys in display order.
	Keys() []string

	// SetLLMProvider configures the completion service provider.
	SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error

	// Validate checks that the settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}

package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxContextChars   = "pipeline.max_context_chars"
	keyFetchConcurrency  = "pipeline.fetch_concurrency"
	keyJudgeConcurrency  = "pipeline.judge_concurrency"
	keyJudgeTextLimit    = "pipeline.judge_text_limit"
	keyMaxFiles          = "pipeline.max_files"
	keyDefaultMode       = "pipeline.default_mode"
	keyTermWeight        = "scoring.term_weight"
	keyEmphasisBonus     = "scoring.emphasis_bonus"
	keyInstructionBonus  = "scoring.instruction_bonus"
	keyPriorityHigh      = "scoring.priority_high"
	keyPriorityMedium    = "scoring.priority_medium"
	keyRelevanceFloor    = "ranking.relevance_floor"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMProject        = "llm.project"
	keyLLMLocation       = "llm.location"
	keyLLMRPS            = "llm.requests_per_second"
	keyDropboxAppKey     = "dropbox.app_key"
	keyDropboxAppSecret  = "dropbox.app_secret"
	keyDropboxRoot       = "dropbox.root"
	keyDropboxNameFilter = "dropbox.name_filter"
	keyDropboxRPS        = "dropbox.requests_per_second"
	keyRedirectPort      = "oauth.redirect_port"
)

// valueKind is how a setting is parsed from text.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindList
	kindProvider
	kindMode
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	key  string
	kind valueKind
}{
	{keyMaxContextChars, kindInt},
	{keyFetchConcurrency, kindInt},
	{keyJudgeConcurrency, kindInt},
	{keyJudgeTextLimit, kindInt},
	{keyMaxFiles, kindInt},
	{keyDefaultMode, kindMode},
	{keyTermWeight, kindInt},
	{keyEmphasisBonus, kindInt},
	{keyInstructionBonus, kindInt},
	{keyPriorityHigh, kindInt},
	{keyPriorityMedium, kindInt},
	{keyRelevanceFloor, kindInt},
	{keyLLMProvider, kindProvider},
	{keyLLMModel, kindString},
	{keyLLMAPIKey, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMProject, kindString},
	{keyLLMLocation, kindString},
	{keyLLMRPS, kindInt},
	{keyDropboxAppKey, kindString},
	{keyDropboxAppSecret, kindString},
	{keyDropboxRoot, kindString},
	{keyDropboxNameFilter, kindList},
	{keyDropboxRPS, kindInt},
	{keyRedirectPort, kindInt},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Pipeline: domain.PipelineSettings{
			MaxContextChars:  s.getInt(keyMaxContextChars, d.Pipeline.MaxContextChars),
			FetchConcurrency: s.getInt(keyFetchConcurrency, d.Pipeline.FetchConcurrency),
			JudgeConcurrency: s.getInt(keyJudgeConcurrency, d.Pipeline.JudgeConcurrency),
			JudgeTextLimit:   s.getInt(keyJudgeTextLimit, d.Pipeline.JudgeTextLimit),
			MaxFiles:         s.getInt(keyMaxFiles, d.Pipeline.MaxFiles),
			DefaultMode:      s.getMode(d.Pipeline.DefaultMode),
		},
		Scoring: domain.ScoringSettings{
			TermWeight:       s.getInt(keyTermWeight, d.Scoring.TermWeight),
			EmphasisBonus:    s.getInt(keyEmphasisBonus, d.Scoring.EmphasisBonus),
			InstructionBonus: s.getInt(keyInstructionBonus, d.Scoring.InstructionBonus),
			PriorityHigh:     s.getInt(keyPriorityHigh, d.Scoring.PriorityHigh),
			PriorityMedium:   s.getInt(keyPriorityMedium, d.Scoring.PriorityMedium),
		},
		Ranking: domain.RankingSettings{
			RelevanceFloor: s.getInt(keyRelevanceFloor, d.Ranking.RelevanceFloor),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(d.LLM.Provider),
			Model:             s.getString(keyLLMModel, d.LLM.Model),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // Empty means the public endpoint
			Project:           s.configStore.GetString(keyLLMProject),
			Location:          s.getString(keyLLMLocation, d.LLM.Location),
			RequestsPerSecond: s.getInt(keyLLMRPS, d.LLM.RequestsPerSecond),
		},
		Dropbox: domain.DropboxSettings{
			AppKey:            s.configStore.GetString(keyDropboxAppKey),
			AppSecret:         s.configStore.GetString(keyDropboxAppSecret),
			Root:              s.configStore.GetString(keyDropboxRoot),
			NameFilter:        s.configStore.GetStringSlice(keyDropboxNameFilter),
			RequestsPerSecond: s.getInt(keyDropboxRPS, d.Dropbox.RequestsPerSecond),
		},
		OAuth: domain.OAuthSettings{
			RedirectPort: s.getInt(keyRedirectPort, d.OAuth.RedirectPort),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyMaxContextChars, settings.Pipeline.MaxContextChars},
		{keyFetchConcurrency, settings.Pipeline.FetchConcurrency},
		{keyJudgeConcurrency, settings.Pipeline.JudgeConcurrency},
		{keyJudgeTextLimit, settings.Pipeline.JudgeTextLimit},
		{keyMaxFiles, settings.Pipeline.MaxFiles},
		{keyDefaultMode, settings.Pipeline.DefaultMode.String()},
		{keyTermWeight, settings.Scoring.TermWeight},
		{keyEmphasisBonus, settings.Scoring.EmphasisBonus},
		{keyInstructionBonus, settings.Scoring.InstructionBonus},
		{keyPriorityHigh, settings.Scoring.PriorityHigh},
		{keyPriorityMedium, settings.Scoring.PriorityMedium},
		{keyRelevanceFloor, settings.Ranking.RelevanceFloor},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMProject, settings.LLM.Project},
		{keyLLMLocation, settings.LLM.Location},
		{keyLLMRPS, settings.LLM.RequestsPerSecond},
		{keyDropboxAppKey, settings.Dropbox.AppKey},
		{keyDropboxRoot, settings.Dropbox.Root},
		{keyDropboxNameFilter, settings.Dropbox.NameFilter},
		{keyDropboxRPS, settings.Dropbox.RequestsPerSecond},
		{keyRedirectPort, settings.OAuth.RedirectPort},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so a blank form does not erase them.
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}
	if settings.Dropbox.AppSecret != "" {
		if err := s.configStore.Set(keyDropboxAppSecret, settings.Dropbox.AppSecret); err != nil {
			return fmt.Errorf("save %s: %w", keyDropboxAppSecret, err)
		}
	}

	return nil
}

// Set parses and stores one setting.
func (s *SettingsService) Set(key, value string) error {
	value = strings.TrimSpace(value)

	for _, k := range settingKeys {
		if k.key != key {
			continue
		}

		var parsed any
		switch k.kind {
		case kindInt:
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrInvalidInput, key, value)
			}
			parsed = n
		case kindList:
			parsed = splitList(value)
		case kindProvider:
			if !domain.LLMProvider(value).IsValid() {
				return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, value)
			}
			parsed = value
		case kindMode:
			if !domain.AskMode(value).IsValid() {
				return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, value)
			}
			parsed = value
		default:
			parsed = value
		}
		return s.configStore.Set(key, parsed)
	}

	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Keys lists the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func validateSettings(settings *domain.AppSettings) error {
	p := settings.Pipeline
	switch {
	case p.MaxContextChars <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyMaxContextChars)
	case p.FetchConcurrency <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyFetchConcurrency)
	case p.JudgeConcurrency <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyJudgeConcurrency)
	case !p.DefaultMode.IsValid():
		return fmt.Errorf("%w: invalid default mode %q", domain.ErrInvalidInput, p.DefaultMode)
	}

	if settings.Scoring.PriorityMedium > settings.Scoring.PriorityHigh {
		return fmt.Errorf("%w: %s must not exceed %s", domain.ErrInvalidInput, keyPriorityMedium, keyPriorityHigh)
	}
	if f := settings.Ranking.RelevanceFloor; f < 0 || f > 100 {
		return fmt.Errorf("%w: %s must be within 0-100", domain.ErrInvalidInput, keyRelevanceFloor)
	}

	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider %q", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if p.DefaultMode == domain.AskModeSmart && !settings.LLM.IsConfigured() {
		return fmt.Errorf("mode %q requires the LLM provider to be configured", p.DefaultMode)
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getMode(defaultVal domain.AskMode) domain.AskMode {
	mode := domain.AskMode(s.configStore.GetString(keyDefaultMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(defaultVal domain.LLMProvider) domain.LLMProvider {
	provider := domain.LLMProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

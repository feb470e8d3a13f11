package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: "(not set)"},
		{name: "Short", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long", input: "AIzaSy1234567890abcdef", expected: "AIza...cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskSecret(tt.input))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{name: "Empty uses default", input: "", maxVal: 2, defaultVal: 1, expected: 1},
		{name: "Valid", input: "2", maxVal: 2, defaultVal: 1, expected: 2},
		{name: "Too large", input: "3", maxVal: 2, defaultVal: 1, expected: 1},
		{name: "Zero", input: "0", maxVal: 2, defaultVal: 1, expected: 1},
		{name: "Not a number", input: "gemini", maxVal: 2, defaultVal: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseChoice(tt.input, tt.maxVal, tt.defaultVal))
		})
	}
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("llm.api_key"))
	assert.True(t, isSecretKey("dropbox.app_secret"))
	assert.False(t, isSecretKey("dropbox.app_key"))
	assert.False(t, isSecretKey("llm.model"))
}

func TestSettingsShow(t *testing.T) {
	svc := newMockSettingsService()
	svc.settings.LLM.APIKey = "AIzaSy1234567890abcdef"
	svc.settings.Dropbox.NameFilter = []string{"canvas", "handleiding"}
	setupTestServices(t, Services{Settings: svc})

	out, _, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Default mode: heuristic")
	assert.Contains(t, out, "Context budget: 180000 characters")
	assert.Contains(t, out, "API Key: AIza...cdef")
	assert.NotContains(t, out, "AIzaSy1234567890abcdef")
	assert.Contains(t, out, "Status: configured")
	assert.Contains(t, out, "Root: (whole account)")
	assert.Contains(t, out, "Name filter: canvas, handleiding")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_Vertex(t *testing.T) {
	svc := newMockSettingsService()
	svc.settings.LLM.Provider = domain.LLMProviderVertex
	svc.settings.LLM.Location = ""
	svc.validateErr = errors.New("llm.project is required")
	setupTestServices(t, Services{Settings: svc})

	out, _, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Project: (not set)")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Warning: llm.project is required")
}

func TestSettingsSet(t *testing.T) {
	svc := newMockSettingsService()
	setupTestServices(t, Services{Settings: svc})

	out, _, err := execute(t, "", "settings", "set", "scoring.term_weight", "12")
	require.NoError(t, err)
	assert.Equal(t, "12", svc.values["scoring.term_weight"])
	assert.Contains(t, out, "scoring.term_weight = 12")

	out, _, err = execute(t, "", "settings", "set", "llm.api_key", "AIzaSy1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "llm.api_key = AIza...cdef")
}

func TestSettingsSet_Error(t *testing.T) {
	svc := newMockSettingsService()
	svc.setErr = domain.ErrInvalidInput
	setupTestServices(t, Services{Settings: svc})

	_, _, err := execute(t, "", "settings", "set", "scoring.term_weight", "veel")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "failed to set scoring.term_weight")
}

func TestSettingsKeys(t *testing.T) {
	setupTestServices(t, Services{Settings: newMockSettingsService()})

	out, _, err := execute(t, "", "settings", "keys")

	require.NoError(t, err)
	assert.Equal(t, "pipeline.default_mode\nllm.api_key\n", out)
}

func TestSettingsLLM_Gemini(t *testing.T) {
	svc := newMockSettingsService()
	setupTestServices(t, Services{Settings: svc})

	out, _, err := execute(t, "1\n\nAIzaSyKEY\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.LLMProviderGemini, svc.provider)
	assert.Equal(t, "gemini-2.0-flash", svc.model)
	assert.Equal(t, "AIzaSyKEY", svc.apiKey)
	assert.Contains(t, out, "OK")
}

func TestSettingsLLM_GeminiNeedsKey(t *testing.T) {
	setupTestServices(t, Services{Settings: newMockSettingsService()})

	_, _, err := execute(t, "1\n\n\n", "settings", "llm")

	assert.ErrorContains(t, err, "API key is required")
}

func TestSettingsLLM_Vertex(t *testing.T) {
	svc := newMockSettingsService()
	setupTestServices(t, Services{Settings: svc})

	_, _, err := execute(t, "2\ngemini-1.5-pro\nmy-project\n\n", "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.LLMProviderVertex, svc.provider)
	assert.Equal(t, "gemini-1.5-pro", svc.model)
	assert.Empty(t, svc.apiKey)
	assert.Equal(t, "my-project", svc.values["llm.project"])
	assert.Equal(t, "europe-west4", svc.values["llm.location"])
}

func TestSettingsLLM_ValidationFails(t *testing.T) {
	svc := newMockSettingsService()
	svc.llmErr = domain.ErrLLMUnavailable
	setupTestServices(t, Services{Settings: svc})

	out, _, err := execute(t, "1\n\nAIzaSyKEY\n", "settings", "llm")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, out, "FAILED")
}

func TestSettings_NotConfigured(t *testing.T) {
	setupTestServices(t, Services{})

	for _, args := range [][]string{
		{"settings"},
		{"settings", "set", "a", "b"},
		{"settings", "keys"},
		{"settings", "llm"},
	} {
		_, _, err := execute(t, "", args...)
		assert.ErrorContains(t, err, "settings service not configured", args)
	}
}

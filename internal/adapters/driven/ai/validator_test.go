package ai

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	v := NewConfigValidator()
	require.NotNil(t, v)
	assert.Equal(t, pingTimeout, v.timeout)
	assert.Equal(t, time.Second, v.WithTimeout(time.Second).timeout)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	ok := modelServer(t, http.StatusOK)
	rejected := modelServer(t, http.StatusUnauthorized)

	tests := []struct {
		name    string
		config  *domain.LLMSettings
		wantErr bool
	}{
		{"nil config", nil, false},
		{"no provider", &domain.LLMSettings{Model: "test-model"}, false},
		{
			"reachable",
			&domain.LLMSettings{Provider: domain.LLMProviderGemini, APIKey: "k", BaseURL: ok.URL},
			false,
		},
		{
			"rejected key",
			&domain.LLMSettings{Provider: domain.LLMProviderGemini, APIKey: "bad", BaseURL: rejected.URL},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigValidator().ValidateLLM(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
				return
			}
			assert.NoError(t, err)
		})
	}
}

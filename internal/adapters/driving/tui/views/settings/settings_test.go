package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/coach/internal/core/domain"
)

// MockSettingsService is a mock implementation of driving.SettingsService.
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSettings), args.Error(1)
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	args := m.Called(settings)
	return args.Error(0)
}

func (m *MockSettingsService) Set(key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockSettingsService) Keys() []string {
	return []string{"pipeline.default_mode", "scoring.term_weight", "llm.api_key", "dropbox.root"}
}

func (m *MockSettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	args := m.Called(provider, model, apiKey)
	return args.Error(0)
}

func (m *MockSettingsService) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateLLMConfig() error {
	args := m.Called()
	return args.Error(0)
}

func loadedView(t *testing.T, svc *MockSettingsService) *View {
	t.Helper()
	s := domain.DefaultAppSettings()
	s.LLM.APIKey = "secret-key"
	svc.On("Get").Return(&s, nil)

	v := NewView(styles.DefaultStyles(), svc)
	v.SetDimensions(100, 30)
	msg := v.Init()()
	v, _ = v.Update(msg)
	require.NoError(t, v.Err())
	return v
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_RendersValues(t *testing.T) {
	v := loadedView(t, new(MockSettingsService))

	out := v.View()
	assert.Contains(t, out, "Settings")
	assert.Contains(t, out, "pipeline.default_mode")
	assert.Contains(t, out, "heuristic")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "secret-key")
	assert.Contains(t, out, "(not set)")
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, new(MockSettingsService))
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_LoadError(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("Get").Return(nil, errors.New("disk full"))

	v := NewView(nil, svc)
	v.SetDimensions(100, 30)
	v, _ = v.Update(v.Init()())

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "disk full")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 30)
	v, _ = v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoSettingsService)
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, new(MockSettingsService))

	v, _ = v.Update(key("down"))
	v, _ = v.Update(key("j"))
	assert.Equal(t, 2, v.Selected())

	v, _ = v.Update(key("up"))
	assert.Equal(t, 1, v.Selected())

	for i := 0; i < 10; i++ {
		v, _ = v.Update(key("down"))
	}
	assert.Equal(t, 3, v.Selected())
}

func TestView_EditAndSave(t *testing.T) {
	svc := new(MockSettingsService)
	v := loadedView(t, svc)
	svc.On("Set", "scoring.term_weight", "105").Return(nil)

	v, _ = v.Update(key("down"))
	v, _ = v.Update(key("enter"))
	require.True(t, v.Editing())

	// The editor is prefilled with the current value.
	v, _ = v.Update(key("5"))
	v, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, v.Editing())

	saved, ok := cmd().(messages.SettingsSaved)
	require.True(t, ok)
	assert.NoError(t, saved.Err)
	assert.Equal(t, "scoring.term_weight", saved.Key)

	v, cmd = v.Update(saved)
	require.NotNil(t, cmd, "a successful save reloads settings")
	assert.Contains(t, v.View(), "Saved scoring.term_weight")
	svc.AssertExpectations(t)
}

func TestView_SaveError(t *testing.T) {
	v := loadedView(t, new(MockSettingsService))

	v, cmd := v.Update(messages.SettingsSaved{Key: "scoring.term_weight", Err: errors.New("must be a number")})
	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "must be a number")
}

func TestView_SecretEditNotPrefilled(t *testing.T) {
	svc := new(MockSettingsService)
	v := loadedView(t, svc)

	v, _ = v.Update(key("down"))
	v, _ = v.Update(key("down"))
	v, _ = v.Update(key("enter"))
	require.True(t, v.Editing())
	assert.NotContains(t, v.View(), "secret-key")

	// Submitting an empty secret keeps the stored one.
	v, cmd := v.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
	svc.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestView_EscCancelsEditThenGoesBack(t *testing.T) {
	v := loadedView(t, new(MockSettingsService))

	v, _ = v.Update(key("enter"))
	require.True(t, v.Editing())

	v, cmd := v.Update(key("esc"))
	assert.False(t, v.Editing())
	assert.Nil(t, cmd)

	_, cmd = v.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_EnterBeforeLoadIsIgnored(t *testing.T) {
	v := NewView(nil, new(MockSettingsService))
	v.SetDimensions(100, 30)

	v, cmd := v.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.False(t, v.Editing())
	assert.Contains(t, v.View(), "Loading settings...")
}

func TestView_Reset(t *testing.T) {
	v := loadedView(t, new(MockSettingsService))
	v, _ = v.Update(key("enter"))
	v.Reset()
	assert.False(t, v.Editing())
}

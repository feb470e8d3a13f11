package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/coach/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Ask:        &MockAskService{},
		Actions:    &MockActionService{},
		Documents:  &MockDocumentService{},
		Settings:   &MockSettingsService{},
		Connection: &MockConnectionService{},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// run feeds msg to the app and keeps executing the returned commands,
// expanding batches, until nothing is left. Spinner ticks are dropped.
func run(app *App, msg tea.Msg) {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		_, cmd := app.Update(next)
		queue = append(queue, expand(cmd)...)
	}
}

func expand(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, expand(c)...)
		}
		return out
	case messages.AnswerPrepared, messages.StreamStarted, messages.AnswerUpdated,
		messages.ViewChanged, messages.DocumentsLoaded, messages.SettingsLoaded,
		messages.SettingsSaved, messages.ConnectionLoaded, messages.ActionCompleted:
		return []tea.Msg{m}
	}
	return nil
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestNewApp_MissingAsk(t *testing.T) {
	app, err := NewApp(&Ports{Documents: &MockDocumentService{}})

	assert.ErrorIs(t, err, ErrMissingAskService)
	assert.Nil(t, app)
}

func TestNewApp_UsesConfiguredDefaultMode(t *testing.T) {
	s := domain.DefaultAppSettings()
	s.Pipeline.DefaultMode = domain.AskModeSmart
	ports := newTestPorts()
	ports.Settings = &MockSettingsService{Settings: &s}

	app, err := NewApp(ports)
	require.NoError(t, err)

	assert.Equal(t, domain.AskModeSmart, app.Chat().Mode())
}

func TestNewApp_SettingsErrorKeepsHeuristic(t *testing.T) {
	ports := newTestPorts()
	ports.Settings = &MockSettingsService{GetErr: errors.New("corrupt")}

	app, err := NewApp(ports)
	require.NoError(t, err)

	assert.Equal(t, domain.AskModeHeuristic, app.Chat().Mode())
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.NotNil(t, app.Init())
}

func TestApp_LoadConnectionShowsInMenu(t *testing.T) {
	ports := newTestPorts()
	ports.Connection = &MockConnectionService{StatusValue: domain.ConnectionStatus{
		State: domain.ConnectionState{Phase: domain.PhaseConnected, Account: "docent@example.nl"},
	}}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	run(app, app.loadConnection()())

	assert.Contains(t, app.View(), "docent@example.nl")
}

func TestApp_LoadConnectionWithoutPort(t *testing.T) {
	ports := newTestPorts()
	ports.Connection = nil
	app, err := NewApp(ports)
	require.NoError(t, err)

	assert.Nil(t, app.loadConnection())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, model.(*App).Ready())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_MenuNavigatesToChat(t *testing.T) {
	app := newTestApp(t)

	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_AskFlow(t *testing.T) {
	app := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})

	typeText(app, "Hoe maak ik een quiz?")
	run(app, tea.KeyMsg{Type: tea.KeyEnter})

	require.False(t, app.Chat().Busy())
	require.NotNil(t, app.Chat().Answer())
	assert.Equal(t, "Answer", app.Chat().Answer().Text)
	assert.Equal(t, "Hoe maak ik een quiz?", app.Chat().Answer().Question)
}

func TestApp_StreamContinuesInOtherViews(t *testing.T) {
	app := newTestApp(t)
	run(app, messages.ViewChanged{View: messages.ViewChat})
	typeText(app, "quiz")

	// Submit, then switch views before the answer arrives.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, app.Chat().Busy())
	run(app, messages.ViewChanged{View: messages.ViewHelp})
	for _, msg := range expand(cmd) {
		run(app, msg)
	}

	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.False(t, app.Chat().Busy())
	require.NotNil(t, app.Chat().Answer())
}

func TestApp_DocumentsView(t *testing.T) {
	ports := newTestPorts()
	ports.Documents = &MockDocumentService{
		ListFunc: func(_ context.Context, _ domain.SourceKind) ([]domain.DocumentHandle, error) {
			return []domain.DocumentHandle{{ID: "id:1", DisplayName: "Rubrics.pdf"}}, nil
		},
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	run(app, messages.ViewChanged{View: messages.ViewDocuments})

	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
	assert.Contains(t, app.View(), "Rubrics.pdf")
	assert.NoError(t, app.Err())
}

func TestApp_DocumentsErrorIsRecorded(t *testing.T) {
	ports := newTestPorts()
	ports.Documents = &MockDocumentService{
		ListFunc: func(_ context.Context, _ domain.SourceKind) ([]domain.DocumentHandle, error) {
			return nil, domain.ErrAuthRequired
		},
	}
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)

	run(app, messages.ViewChanged{View: messages.ViewDocuments})

	assert.ErrorIs(t, app.Err(), domain.ErrAuthRequired)
}

func TestApp_SettingsView(t *testing.T) {
	app := newTestApp(t)

	run(app, messages.ViewChanged{View: messages.ViewSettings})

	assert.Equal(t, messages.ViewSettings, app.CurrentView())
	assert.Contains(t, app.View(), "pipeline.default_mode")
	assert.Contains(t, app.View(), "heuristic")
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t)

	run(app, messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "ctrl+t")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)
	testErr := errors.New("boom")

	app.Update(messages.ErrorOccurred{Err: testErr})

	assert.Equal(t, testErr, app.Err())
}

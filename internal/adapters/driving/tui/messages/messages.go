// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/coach/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewDocuments lists candidate documents.
	ViewDocuments
	// ViewSettings edits settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// AnswerPrepared carries the assembled prompt and its sources.
type AnswerPrepared struct {
	Prepared *domain.PreparedAnswer
	Err      error
}

// StreamStarted carries the update channel of a started answer stream.
type StreamStarted struct {
	Updates <-chan domain.AnswerUpdate
	Err     error
}

// AnswerUpdated carries one streamed update. Closed is set once the
// channel has been drained.
type AnswerUpdated struct {
	Update domain.AnswerUpdate
	Closed bool
}

// ActionCompleted reports the outcome of copy, open or export.
type ActionCompleted struct {
	Message string
	Err     error
}

// DocumentsLoaded carries the documents of a source.
type DocumentsLoaded struct {
	Source    domain.SourceKind
	Documents []domain.DocumentHandle
	Err       error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a setting was written.
type SettingsSaved struct {
	Key string
	Err error
}

// ConnectionLoaded carries the Dropbox connection status.
type ConnectionLoaded struct {
	Status domain.ConnectionStatus
}

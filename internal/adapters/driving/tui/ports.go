// Package tui provides the interactive terminal chat for coach.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
// Only Ask is required; views whose port is nil show a notice instead.
type Ports struct {
	// Ask prepares and streams answers.
	Ask driving.AskService

	// Actions copies, opens and exports answers.
	Actions driving.AnswerActionService

	// Documents lists candidate documents.
	Documents driving.DocumentService

	// Settings reads and updates settings.
	Settings driving.SettingsService

	// Connection reports the Dropbox connection in the menu.
	Connection driving.ConnectionService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}

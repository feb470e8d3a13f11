package mcp

import (
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions and assembles context.
	Ask driving.AskService

	// Documents lists candidate documents. Optional.
	Documents driving.DocumentService

	// Connection reports the Dropbox connection. Optional.
	Connection driving.ConnectionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}

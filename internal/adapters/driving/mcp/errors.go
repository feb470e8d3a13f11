// Package mcp provides an MCP (Model Context Protocol) server adapter for coach.
// It lets AI assistants ask Canvas questions and browse the candidate documents.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")

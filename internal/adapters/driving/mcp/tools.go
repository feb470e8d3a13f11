package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// AskInput is the input schema for the ask and prepare_context tools.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question about Canvas LMS"`
	Mode     string `json:"mode,omitempty" jsonschema:"ranking mode: heuristic (default) or smart"`
	Source   string `json:"source,omitempty" jsonschema:"document source: dropbox (default) or library"`
	MaxFiles int    `json:"max_files,omitempty" jsonschema:"maximum number of documents to fetch"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string             `json:"answer"`
	Sources   []domain.SourceRef `json:"sources"`
	NoSources bool               `json:"no_sources"`
}

// ContextOutput is the output schema for the prepare_context tool.
type ContextOutput struct {
	Prompt    string             `json:"prompt"`
	Chars     int                `json:"chars"`
	Included  []string           `json:"included"`
	Omitted   []string           `json:"omitted"`
	Sources   []domain.SourceRef `json:"sources"`
	NoSources bool               `json:"no_sources"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	Source string `json:"source,omitempty" jsonschema:"document source: dropbox (default) or library"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []domain.DocumentHandle `json:"documents"`
	Count     int                     `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a Canvas LMS question from the user's documents, citing the documents used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "prepare_context",
		Description: "Rank the user's documents for a question and return the assembled prompt without answering it",
	}, s.handlePrepareContext)

	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the supported documents available from a source",
		}, s.handleListDocuments)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	opts, err := askOptions(input)
	if err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Question, opts)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:    answer.Text,
		Sources:   nonNil(answer.Sources),
		NoSources: answer.NoSources,
	}, nil
}

// handlePrepareContext handles the prepare_context tool invocation.
func (s *Server) handlePrepareContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, ContextOutput, error) {
	opts, err := askOptions(input)
	if err != nil {
		return nil, ContextOutput{}, err
	}

	prepared, err := s.ports.Ask.Prepare(ctx, input.Question, opts)
	if err != nil {
		return nil, ContextOutput{}, err
	}

	return nil, ContextOutput{
		Prompt:    prepared.Prompt.Text,
		Chars:     prepared.Prompt.Len(),
		Included:  nonNil(prepared.Prompt.Included),
		Omitted:   nonNil(prepared.Prompt.Omitted),
		Sources:   nonNil(prepared.Sources),
		NoSources: prepared.NoSources,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	source, err := sourceKind(input.Source)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	handles, err := s.ports.Documents.List(ctx, source)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	return nil, ListDocumentsOutput{
		Documents: nonNil(handles),
		Count:     len(handles),
	}, nil
}

func askOptions(input AskInput) (domain.AskOptions, error) {
	source, err := sourceKind(input.Source)
	if err != nil {
		return domain.AskOptions{}, err
	}
	mode := domain.AskMode(input.Mode)
	if mode != "" && !mode.IsValid() {
		return domain.AskOptions{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, input.Mode)
	}
	return domain.AskOptions{Mode: mode, Source: source, MaxDocuments: input.MaxFiles}, nil
}

func sourceKind(s string) (domain.SourceKind, error) {
	if s == "" {
		return domain.SourceDropbox, nil
	}
	kind := domain.SourceKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, s)
	}
	return kind, nil
}

// nonNil keeps empty lists as [] in the structured output.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

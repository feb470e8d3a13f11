package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coach/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for coach resources.
	uriScheme = "coach://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Connection != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "status",
			Name:        "status",
			Description: "Dropbox connection status",
			MIMEType:    "application/json",
		}, s.handleStatusResource)
	}

	if s.ports.Documents != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "documents/{source}",
			Name:        "documents",
			Description: "Candidate documents of a source (dropbox or library)",
			MIMEType:    "application/json",
		}, s.handleDocumentsResource)
	}
}

// handleStatusResource reports the connection state.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status := s.ports.Connection.Status(ctx)

	info := struct {
		Phase         string `json:"phase"`
		Description   string `json:"description"`
		Account       string `json:"account,omitempty"`
		Reason        string `json:"reason,omitempty"`
		HasCredential bool   `json:"has_credential"`
	}{
		Phase:         status.State.Phase.String(),
		Description:   status.State.Phase.Description(),
		Account:       status.State.Account,
		Reason:        status.State.Reason,
		HasCredential: status.HasCredential,
	}

	return jsonResource(req.Params.URI, info)
}

// handleDocumentsResource lists the documents of one source.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	source := extractSource(req.Params.URI)
	if !source.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	handles, err := s.ports.Documents.List(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	return jsonResource(req.Params.URI, nonNil(handles))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSource extracts the source from a URI like coach://documents/{source}.
func extractSource(uri string) domain.SourceKind {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return domain.SourceKind(strings.TrimPrefix(uri, prefix))
}

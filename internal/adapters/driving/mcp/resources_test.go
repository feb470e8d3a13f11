package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestExtractSource(t *testing.T) {
	tests := []struct {
		uri  string
		want domain.SourceKind
	}{
		{"coach://documents/dropbox", domain.SourceDropbox},
		{"coach://documents/library", domain.SourceLibrary},
		{"coach://documents/", ""},
		{"coach://status", ""},
		{"other://documents/dropbox", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSource(tt.uri))
		})
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	conn := &mockConnectionService{
		status: domain.ConnectionStatus{
			State:         domain.ConnectionState{Phase: domain.PhaseConnected, Account: "docent@example.nl"},
			HasCredential: true,
		},
	}
	server, err := NewServer(&Ports{Ask: &mockAskService{}, Connection: conn})
	require.NoError(t, err)

	result, err := server.handleStatusResource(context.Background(), makeReadResourceRequest("coach://status"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `"phase": "connected"`)
	assert.Contains(t, result.Contents[0].Text, "docent@example.nl")
	assert.Contains(t, result.Contents[0].Text, `"has_credential": true`)
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		docs := &mockDocumentService{
			handles: []domain.DocumentHandle{{ID: "lib-1", DisplayName: "quiz.docx"}},
		}
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: docs})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("coach://documents/library"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, "quiz.docx")
		assert.Equal(t, domain.SourceLibrary, docs.lastSource)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: &mockDocumentService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("coach://documents/dropbox"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("unknown source is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: &mockDocumentService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("coach://documents/gdrive"))

		require.Error(t, err)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("boom")}
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: docs})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("coach://documents/dropbox"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		ask := &mockAskService{
			answer: &domain.Answer{
				Text:    "Open de opdracht en kies Rubric toevoegen.",
				Sources: []domain.SourceRef{{Name: "rubrics.pdf", Locator: "/canvas/rubrics.pdf", Score: 40}},
			},
		}
		server, err := NewServer(&Ports{Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "Hoe maak ik een rubric?", Mode: "smart"})

		require.NoError(t, err)
		assert.Equal(t, "Open de opdracht en kies Rubric toevoegen.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, "rubrics.pdf", output.Sources[0].Name)
		assert.False(t, output.NoSources)
		assert.Equal(t, "Hoe maak ik een rubric?", ask.lastQuestion)
		assert.Equal(t, domain.AskModeSmart, ask.lastOpts.Mode)
		assert.Equal(t, domain.SourceDropbox, ask.lastOpts.Source)
	})

	t.Run("no sources keeps an empty list", func(t *testing.T) {
		ask := &mockAskService{answer: &domain.Answer{Text: "x", NoSources: true}}
		server, err := NewServer(&Ports{Ask: ask})
		require.NoError(t, err)

		_, output, err := server.handleAsk(ctx, nil, AskInput{Question: "q", Source: "library"})

		require.NoError(t, err)
		assert.True(t, output.NoSources)
		assert.NotNil(t, output.Sources)
		assert.Empty(t, output.Sources)
		assert.Equal(t, domain.SourceLibrary, ask.lastOpts.Source)
	})

	t.Run("rejects unknown mode and source", func(t *testing.T) {
		server, err := NewServer(&Ports{Ask: &mockAskService{}})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q", Mode: "magic"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q", Source: "gdrive"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("returns service error", func(t *testing.T) {
		ask := &mockAskService{err: domain.ErrAuthRequired}
		server, err := NewServer(&Ports{Ask: ask})
		require.NoError(t, err)

		_, _, err = server.handleAsk(ctx, nil, AskInput{Question: "q"})

		require.ErrorIs(t, err, domain.ErrAuthRequired)
	})
}

func TestServer_handlePrepareContext(t *testing.T) {
	ctx := context.Background()

	ask := &mockAskService{
		prepared: &domain.PreparedAnswer{
			Prompt: domain.AssembledContext{
				Text:     "VRAAG: hoe?",
				Included: []string{"a.pdf"},
				Omitted:  []string{"b.pdf"},
			},
			Sources: []domain.SourceRef{{Name: "a.pdf"}},
		},
	}
	server, err := NewServer(&Ports{Ask: ask})
	require.NoError(t, err)

	_, output, err := server.handlePrepareContext(ctx, nil, AskInput{Question: "hoe?", MaxFiles: 5})

	require.NoError(t, err)
	assert.Equal(t, "VRAAG: hoe?", output.Prompt)
	assert.Equal(t, 11, output.Chars)
	assert.Equal(t, []string{"a.pdf"}, output.Included)
	assert.Equal(t, []string{"b.pdf"}, output.Omitted)
	assert.Len(t, output.Sources, 1)
	assert.Equal(t, 5, ask.lastOpts.MaxDocuments)
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents of the default source", func(t *testing.T) {
		docs := &mockDocumentService{
			handles: []domain.DocumentHandle{{ID: "id:1", DisplayName: "a.pdf", LocatorPath: "/a.pdf"}},
		}
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: docs})
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "a.pdf", output.Documents[0].DisplayName)
		assert.Equal(t, domain.SourceDropbox, docs.lastSource)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		docs := &mockDocumentService{err: errors.New("dropbox down")}
		server, err := NewServer(&Ports{Ask: &mockAskService{}, Documents: docs})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{Source: "library"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "dropbox down")
		assert.Equal(t, domain.SourceLibrary, docs.lastSource)
	})
}

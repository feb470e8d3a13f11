package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func TestDocumentAcquirer_SkipsFailures(t *testing.T) {
	store := &mockDocumentStore{}
	store.add("een.txt", "Eerste document met genoeg tekst.")
	failing := store.add("twee.txt", "wordt niet gedownload")
	store.add("drie.txt", "CORRUPT bestand")
	store.add("vier.md", "Vierde document met genoeg tekst.")
	store.add("vijf.pdf", "Vijfde document met genoeg tekst.")
	store.errs = map[string]error{failing.LocatorPath: &domain.UpstreamError{Service: "dropbox", StatusCode: 500}}

	handles, _ := store.ListFiles(context.Background(), "tok")
	docs, err := NewDocumentAcquirer(newMockExtractors(), 2).Acquire(context.Background(), store, "tok", handles)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "een.txt", docs[0].Handle.DisplayName)
	assert.Equal(t, "vier.md", docs[1].Handle.DisplayName)
	assert.Equal(t, "vijf.pdf", docs[2].Handle.DisplayName)
	for _, d := range docs {
		assert.Equal(t, domain.ExtractionSuccess, d.Outcome)
	}
}

func TestDocumentAcquirer_EmptyAndUnsupported(t *testing.T) {
	store := &mockDocumentStore{}
	store.add("leeg.txt", "  \n\t kort  ")
	store.add("programma.exe", "binary content that is long enough")
	locked := store.add("slot.txt", "Dit bestand mag niet gedownload worden.")
	store.files[2].Downloadable = false

	docs, err := NewDocumentAcquirer(newMockExtractors(), 1).Acquire(context.Background(), store, "tok", store.files)

	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, []string{"/leeg.txt"}, store.downloads)
	assert.NotContains(t, store.downloads, locked.LocatorPath)
}

func TestDocumentAcquirer_AuthExpiredAborts(t *testing.T) {
	store := &mockDocumentStore{}
	expired := store.add("a.txt", "voldoende tekst hier")
	store.add("b.txt", "voldoende tekst hier")
	store.errs = map[string]error{expired.LocatorPath: fmt.Errorf("download: %w", domain.ErrAuthExpired)}

	_, err := NewDocumentAcquirer(newMockExtractors(), 1).Acquire(context.Background(), store, "tok", store.files)

	assert.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestDocumentAcquirer_InvalidInput(t *testing.T) {
	a := NewDocumentAcquirer(newMockExtractors(), 0)
	store := &mockDocumentStore{}
	h := store.add("a.txt", "tekst genoeg hier")

	_, err := a.Acquire(context.Background(), store, "", []domain.DocumentHandle{h})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	h.LocatorPath = ""
	_, err = a.Acquire(context.Background(), store, "tok", []domain.DocumentHandle{h})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.downloads)
}

func TestDocumentAcquirer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &mockDocumentStore{}
	h := store.add("a.txt", "tekst genoeg hier")
	store.errs = map[string]error{h.LocatorPath: context.Canceled}

	_, err := NewDocumentAcquirer(newMockExtractors(), 1).Acquire(ctx, store, "tok", store.files)

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMeaningfulChars(t *testing.T) {
	assert.Equal(t, 0, meaningfulChars(" \n\t"))
	assert.Equal(t, 4, meaningfulChars(" a b\nc d "))
	assert.Equal(t, 3, meaningfulChars("één"))
}

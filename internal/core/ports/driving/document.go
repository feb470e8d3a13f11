package driving

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// DocumentService lists candidate documents without answering a question.
type DocumentService interface {
	// List returns the supported documents available from source.
	List(ctx context.Context, source domain.SourceKind) ([]domain.DocumentHandle, error)
}

// LibraryService manages the local document library.
type LibraryService interface {
	// Import reads a file from disk into the library.
	Import(ctx context.Context, path string) (*domain.LibraryFile, error)

	// List returns all library documents.
	List(ctx context.Context) ([]domain.DocumentHandle, error)

	// Remove deletes a library document.
	Remove(ctx context.Context, id string) error

	// Watch imports supported files as they appear in dir until ctx is cancelled.
	// onImport is called after each successful import.
	Watch(ctx context.Context, dir string, onImport func(domain.LibraryFile)) error
}

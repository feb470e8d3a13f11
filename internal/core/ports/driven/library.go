package driven

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// LibraryStore persists documents imported into the local library.
type LibraryStore interface {
	// Add stores a file. Files with identical content hashes are stored once;
	// Add then returns the existing record.
	Add(ctx context.Context, file domain.LibraryFile) (*domain.LibraryFile, error)

	// Get retrieves a file including its content.
	// Returns domain.ErrNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (*domain.LibraryFile, error)

	// List returns all files without content, oldest first.
	List(ctx context.Context) ([]domain.LibraryFile, error)

	// Remove deletes a file. Returns domain.ErrNotFound if the ID is unknown.
	Remove(ctx context.Context, id string) error
}

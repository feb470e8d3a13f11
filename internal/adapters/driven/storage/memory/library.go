package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure LibraryStore implements the interface.
var _ driven.LibraryStore = (*LibraryStore)(nil)

// LibraryStore is an in-memory implementation of driven.LibraryStore.
type LibraryStore struct {
	mu     sync.RWMutex
	files  map[string]domain.LibraryFile
	byHash map[string]string
}

// NewLibraryStore creates a new in-memory library store.
func NewLibraryStore() *LibraryStore {
	return &LibraryStore{
		files:  make(map[string]domain.LibraryFile),
		byHash: make(map[string]string),
	}
}

// Add stores a file unless one with the same content hash exists.
func (s *LibraryStore) Add(_ context.Context, file domain.LibraryFile) (*domain.LibraryFile, error) {
	if file.ID == "" || file.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byHash[file.ContentHash]; ok && file.ContentHash != "" {
		existing := s.files[id]
		return &existing, nil
	}

	if file.Size == 0 {
		file.Size = int64(len(file.Content))
	}
	s.files[file.ID] = file
	if file.ContentHash != "" {
		s.byHash[file.ContentHash] = file.ID
	}
	return &file, nil
}

// Get retrieves a file including its content.
func (s *LibraryStore) Get(_ context.Context, id string) (*domain.LibraryFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// List returns all files without content, oldest first.
func (s *LibraryStore) List(_ context.Context) ([]domain.LibraryFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LibraryFile, 0, len(s.files))
	for _, f := range s.files {
		f.Content = nil
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.Before(out[j].ImportedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Remove deletes a file.
func (s *LibraryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.files[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.files, id)
	delete(s.byHash, file.ContentHash)
	return nil
}

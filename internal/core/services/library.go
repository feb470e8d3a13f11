package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// localCredential stands in for a bearer token when reading the library.
const localCredential = "local"

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService imports local files so they can be used as sources.
type LibraryService struct {
	store      driven.LibraryStore
	extractors driven.ExtractorRegistry
	watcher    driven.DirectoryWatcher
}

// NewLibraryService creates a new library service.
// The watcher parameter is optional (can be nil); Watch then fails.
func NewLibraryService(
	store driven.LibraryStore,
	extractors driven.ExtractorRegistry,
	watcher driven.DirectoryWatcher,
) *LibraryService {
	return &LibraryService{store: store, extractors: extractors, watcher: watcher}
}

// Import reads a file into the library. Importing identical content twice
// returns the existing record.
func (s *LibraryService) Import(ctx context.Context, path string) (*domain.LibraryFile, error) {
	name := filepath.Base(path)
	ext := domain.DocumentHandle{DisplayName: name}.Extension()
	if _, ok := s.extractors.For(ext); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, name)
	}

	sum := sha256.Sum256(data)
	file := domain.LibraryFile{
		ID:          uuid.NewString(),
		Name:        name,
		Content:     data,
		ContentHash: hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
		ImportedAt:  time.Now(),
	}

	stored, err := s.store.Add(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	logger.Debug("Library: imported %s as %s", name, stored.ID)
	return stored, nil
}

// List returns all library documents as handles.
func (s *LibraryService) List(ctx context.Context) ([]domain.DocumentHandle, error) {
	return NewLibraryDocuments(s.store).ListFiles(ctx, localCredential)
}

// Remove deletes a library document.
func (s *LibraryService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: library id is required", domain.ErrInvalidInput)
	}
	return s.store.Remove(ctx, id)
}

// Watch imports supported files written to dir until ctx is cancelled.
func (s *LibraryService) Watch(ctx context.Context, dir string, onImport func(domain.LibraryFile)) error {
	if s.watcher == nil {
		return fmt.Errorf("%w: no directory watcher configured", domain.ErrInvalidInput)
	}

	paths, errs, err := s.watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	logger.Info("Watching %s for new documents", dir)
	for paths != nil || errs != nil {
		select {
		case <-ctx.Done():
			return nil

		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			file, err := s.Import(ctx, p)
			if err != nil {
				logger.Debug("Library: not importing %s: %v", p, err)
				continue
			}
			if onImport != nil {
				onImport(*file)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Library watcher: %v", err)
		}
	}
	return nil
}

// LibraryDocuments exposes the library as a document store.
type LibraryDocuments struct {
	store driven.LibraryStore
}

// Ensure LibraryDocuments implements the interface.
var _ driven.DocumentStore = (*LibraryDocuments)(nil)

// NewLibraryDocuments wraps a library store.
func NewLibraryDocuments(store driven.LibraryStore) *LibraryDocuments {
	return &LibraryDocuments{store: store}
}

// ListFiles returns a handle per library file. The credential is ignored.
func (l *LibraryDocuments) ListFiles(ctx context.Context, _ string) ([]domain.DocumentHandle, error) {
	files, err := l.store.List(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]domain.DocumentHandle, len(files))
	for i, f := range files {
		handles[i] = f.Handle()
	}
	return handles, nil
}

// Download returns the content of the library file at a library:// locator.
func (l *LibraryDocuments) Download(ctx context.Context, _, locatorPath string) ([]byte, error) {
	id, ok := domain.ParseLibraryLocator(locatorPath)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a library locator", domain.ErrInvalidInput, locatorPath)
	}
	file, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return file.Content, nil
}

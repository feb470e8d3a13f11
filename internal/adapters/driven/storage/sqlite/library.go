package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// libraryStore implements driven.LibraryStore.
type libraryStore struct {
	store *Store
}

var _ driven.LibraryStore = (*libraryStore)(nil)

// Add stores a file unless one with the same content hash exists.
func (s *libraryStore) Add(ctx context.Context, file domain.LibraryFile) (*domain.LibraryFile, error) {
	if file.ID == "" || file.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if file.ImportedAt.IsZero() {
		file.ImportedAt = time.Now().UTC()
	}
	if file.Size == 0 {
		file.Size = int64(len(file.Content))
	}
	if file.Content == nil {
		file.Content = []byte{}
	}

	if file.ContentHash != "" {
		existing, err := s.byHash(ctx, file.ContentHash)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO library_files (id, name, content, content_hash, size, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, file.ID, file.Name, file.Content, file.ContentHash, file.Size, file.ImportedAt)
	if err != nil {
		return nil, fmt.Errorf("saving library file: %w", err)
	}
	return &file, nil
}

// Get retrieves a file including its content.
func (s *libraryStore) Get(ctx context.Context, id string) (*domain.LibraryFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, content, content_hash, size, imported_at
		FROM library_files WHERE id = ?
	`, id)
	return scanLibraryFile(row, true)
}

func (s *libraryStore) byHash(ctx context.Context, hash string) (*domain.LibraryFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, NULL, content_hash, size, imported_at
		FROM library_files WHERE content_hash = ?
	`, hash)
	return scanLibraryFile(row, false)
}

// List returns all files without content, oldest first.
func (s *libraryStore) List(ctx context.Context) ([]domain.LibraryFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, NULL, content_hash, size, imported_at
		FROM library_files ORDER BY imported_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing library files: %w", err)
	}
	defer rows.Close()

	files := []domain.LibraryFile{}
	for rows.Next() {
		f, err := scanLibraryFile(rows, false)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// Remove deletes a file.
func (s *libraryStore) Remove(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM library_files WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting library file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting library file: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLibraryFile(row scanner, withContent bool) (*domain.LibraryFile, error) {
	var f domain.LibraryFile
	var content []byte
	if err := row.Scan(&f.ID, &f.Name, &content, &f.ContentHash, &f.Size, &f.ImportedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning library file: %w", err)
	}
	if withContent {
		if content == nil {
			content = []byte{}
		}
		f.Content = content
	}
	return &f, nil
}

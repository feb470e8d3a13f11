package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func libraryFile(id, name, hash string, content string, at time.Time) domain.LibraryFile {
	return domain.LibraryFile{
		ID:          id,
		Name:        name,
		Content:     []byte(content),
		ContentHash: hash,
		ImportedAt:  at,
	}
}

func TestLibraryStore_AddAndGet(t *testing.T) {
	ctx := context.Background()
	lib := setupTestStore(t).LibraryStore()
	now := time.Now().UTC()

	added, err := lib.Add(ctx, libraryFile("id-1", "rubric.pdf", "h1", "%PDF-1.4", now))
	require.NoError(t, err)
	assert.Equal(t, int64(8), added.Size)

	got, err := lib.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "rubric.pdf", got.Name)
	assert.Equal(t, []byte("%PDF-1.4"), got.Content)
	assert.Equal(t, "h1", got.ContentHash)
	assert.Equal(t, int64(8), got.Size)
	assert.WithinDuration(t, now, got.ImportedAt, time.Second)
}

func TestLibraryStore_AddDeduplicatesByHash(t *testing.T) {
	ctx := context.Background()
	lib := setupTestStore(t).LibraryStore()

	_, err := lib.Add(ctx, libraryFile("id-1", "a.txt", "same", "text", time.Now()))
	require.NoError(t, err)

	existing, err := lib.Add(ctx, libraryFile("id-2", "b.txt", "same", "text", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "id-1", existing.ID)
	assert.Equal(t, "a.txt", existing.Name)

	files, err := lib.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestLibraryStore_AddWithoutHashIsNotDeduplicated(t *testing.T) {
	ctx := context.Background()
	lib := setupTestStore(t).LibraryStore()

	_, err := lib.Add(ctx, libraryFile("id-1", "a.txt", "", "x", time.Now()))
	require.NoError(t, err)
	_, err = lib.Add(ctx, libraryFile("id-2", "b.txt", "", "x", time.Now()))
	require.NoError(t, err)

	files, err := lib.List(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestLibraryStore_AddInvalid(t *testing.T) {
	lib := setupTestStore(t).LibraryStore()

	_, err := lib.Add(context.Background(), domain.LibraryFile{Name: "no-id.txt"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = lib.Add(context.Background(), domain.LibraryFile{ID: "no-name"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLibraryStore_ListOldestFirstWithoutContent(t *testing.T) {
	ctx := context.Background()
	lib := setupTestStore(t).LibraryStore()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := lib.Add(ctx, libraryFile("b", "second.txt", "h2", "two", base.Add(time.Hour)))
	require.NoError(t, err)
	_, err = lib.Add(ctx, libraryFile("a", "first.txt", "h1", "one", base))
	require.NoError(t, err)

	files, err := lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a", files[0].ID)
	assert.Equal(t, "b", files[1].ID)
	assert.Nil(t, files[0].Content)
	assert.Equal(t, int64(3), files[0].Size)
}

func TestLibraryStore_ListEmpty(t *testing.T) {
	files, err := setupTestStore(t).LibraryStore().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLibraryStore_Remove(t *testing.T) {
	ctx := context.Background()
	lib := setupTestStore(t).LibraryStore()

	_, err := lib.Add(ctx, libraryFile("id-1", "a.txt", "h", "x", time.Now()))
	require.NoError(t, err)

	require.NoError(t, lib.Remove(ctx, "id-1"))
	_, err = lib.Get(ctx, "id-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, lib.Remove(ctx, "id-1"), domain.ErrNotFound)

	// The hash is free again after removal.
	_, err = lib.Add(ctx, libraryFile("id-2", "a.txt", "h", "x", time.Now()))
	assert.NoError(t, err)
}

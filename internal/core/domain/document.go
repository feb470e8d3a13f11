package domain

import (
	"path"
	"strings"
	"time"
)

// SourceKind identifies where candidate documents come from.
type SourceKind string

// Available document sources.
const (
	// SourceDropbox enumerates files in the connected Dropbox account.
	SourceDropbox SourceKind = "dropbox"

	// SourceLibrary uses files imported into the local library.
	SourceLibrary SourceKind = "library"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceDropbox || k == SourceLibrary
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// DocumentHandle identifies a candidate source document.
// Handles are immutable and discarded when the file list is refreshed.
type DocumentHandle struct {
	// ID is opaque and unique per source.
	ID string `json:"id"`

	// DisplayName is the file name shown to users.
	DisplayName string `json:"display_name"`

	// LocatorPath is the source-system path used to download the file.
	LocatorPath string `json:"locator_path"`

	// SizeBytes is the file size reported by the source.
	SizeBytes int64 `json:"size_bytes"`

	// ContentFingerprint is an optional content hash.
	ContentFingerprint string `json:"content_fingerprint,omitempty"`

	// Downloadable is false for files the source refuses to serve.
	Downloadable bool `json:"downloadable"`

	// ModifiedAt is the last server-side modification time, if known.
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

// Extension returns the lower-cased file extension including the dot.
func (h DocumentHandle) Extension() string {
	name := h.DisplayName
	if name == "" {
		name = h.LocatorPath
	}
	return strings.ToLower(path.Ext(name))
}

// ExtractionOutcome describes what happened when extracting a document's text.
type ExtractionOutcome string

// Extraction outcomes.
const (
	ExtractionSuccess     ExtractionOutcome = "success"
	ExtractionUnsupported ExtractionOutcome = "unsupported-type"
	ExtractionCorrupt     ExtractionOutcome = "corrupt"
	ExtractionEmpty       ExtractionOutcome = "empty"
)

// String returns the string representation.
func (o ExtractionOutcome) String() string {
	return string(o)
}

// ExtractedDocument is a handle plus its extracted plain text.
// It is read-only after acquisition and lives for one request.
type ExtractedDocument struct {
	Handle  DocumentHandle    `json:"handle"`
	Text    string            `json:"-"`
	Outcome ExtractionOutcome `json:"outcome"`
}

// LibraryFile is a document imported into the local library.
type LibraryFile struct {
	// ID is the library identifier (UUID).
	ID string

	// Name is the original file name.
	Name string

	// Content holds the raw file bytes.
	Content []byte

	// ContentHash is the hex SHA-256 of Content.
	ContentHash string

	// Size is the content length in bytes. It is set even when Content is not loaded.
	Size int64

	// ImportedAt is when the file was added.
	ImportedAt time.Time
}

// Handle converts a library file to a document handle.
func (f LibraryFile) Handle() DocumentHandle {
	return DocumentHandle{
		ID:                 f.ID,
		DisplayName:        f.Name,
		LocatorPath:        LibraryLocator(f.ID),
		SizeBytes:          f.size(),
		ContentFingerprint: f.ContentHash,
		Downloadable:       true,
		ModifiedAt:         f.ImportedAt,
	}
}

func (f LibraryFile) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Content))
}

// libraryScheme prefixes locator paths of library documents.
const libraryScheme = "library://"

// LibraryLocator builds the locator path for a library document.
func LibraryLocator(id string) string {
	return libraryScheme + id
}

// ParseLibraryLocator returns the library ID from a locator path.
func ParseLibraryLocator(locator string) (string, bool) {
	if !strings.HasPrefix(locator, libraryScheme) {
		return "", false
	}
	id := strings.TrimPrefix(locator, libraryScheme)
	return id, id != ""
}

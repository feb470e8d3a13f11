package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService finds candidate documents in a source.
type DocumentService struct {
	dropbox     driven.DocumentStore
	library     driven.LibraryStore
	credentials driven.CredentialProvider
	extractors  driven.ExtractorRegistry
	nameFilter  []string
	maxFiles    int
}

// NewDocumentService creates a new document service.
// The dropbox and library stores are optional (can be nil); listing a
// source without a store fails with domain.ErrInvalidInput.
func NewDocumentService(
	dropbox driven.DocumentStore,
	library driven.LibraryStore,
	credentials driven.CredentialProvider,
	extractors driven.ExtractorRegistry,
	settings domain.AppSettings,
) *DocumentService {
	return &DocumentService{
		dropbox:     dropbox,
		library:     library,
		credentials: credentials,
		extractors:  extractors,
		nameFilter:  settings.Dropbox.NameFilter,
		maxFiles:    settings.Pipeline.MaxFiles,
	}
}

// List returns the supported documents available from source.
func (s *DocumentService) List(ctx context.Context, source domain.SourceKind) ([]domain.DocumentHandle, error) {
	_, _, handles, err := s.candidates(ctx, source, 0)
	return handles, err
}

// candidates resolves the store and credential for a source and returns
// its supported documents, newest first, capped at limit (0 = no cap).
func (s *DocumentService) candidates(
	ctx context.Context,
	source domain.SourceKind,
	limit int,
) (driven.DocumentStore, string, []domain.DocumentHandle, error) {
	if source == "" {
		source = domain.SourceDropbox
	}
	if !source.IsValid() {
		return nil, "", nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, source)
	}

	store, credential, err := s.resolve(ctx, source)
	if err != nil {
		return nil, "", nil, err
	}

	all, err := store.ListFiles(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpired) {
			s.forgetCredential(ctx)
		}
		return nil, "", nil, fmt.Errorf("list %s documents: %w", source, err)
	}

	filter := s.nameFilter
	if source == domain.SourceLibrary {
		filter = nil
	}

	handles := make([]domain.DocumentHandle, 0, len(all))
	for _, h := range all {
		if !h.Downloadable {
			continue
		}
		if _, ok := s.extractors.For(h.Extension()); !ok {
			continue
		}
		if !matchesNameFilter(h.DisplayName, filter) {
			continue
		}
		handles = append(handles, h)
	}

	sort.SliceStable(handles, func(i, j int) bool {
		if !handles[i].ModifiedAt.Equal(handles[j].ModifiedAt) {
			return handles[i].ModifiedAt.After(handles[j].ModifiedAt)
		}
		return handles[i].DisplayName < handles[j].DisplayName
	})

	if limit > 0 && len(handles) > limit {
		logger.Debug("Capping %d candidates at %d", len(handles), limit)
		handles = handles[:limit]
	}

	logger.Debug("Source %s: %d of %d files are candidates", source, len(handles), len(all))
	return store, credential, handles, nil
}

func (s *DocumentService) resolve(ctx context.Context, source domain.SourceKind) (driven.DocumentStore, string, error) {
	switch source {
	case domain.SourceLibrary:
		if s.library == nil {
			return nil, "", fmt.Errorf("%w: library is not configured", domain.ErrInvalidInput)
		}
		return NewLibraryDocuments(s.library), localCredential, nil

	default:
		if s.dropbox == nil || s.credentials == nil {
			return nil, "", fmt.Errorf("%w: dropbox is not configured", domain.ErrInvalidInput)
		}
		credential, err := s.credentials.Get(ctx)
		if err != nil {
			return nil, "", err
		}
		if credential == "" {
			return nil, "", domain.ErrAuthRequired
		}
		return s.dropbox, credential, nil
	}
}

func (s *DocumentService) forgetCredential(ctx context.Context) {
	if s.credentials == nil {
		return
	}
	if err := s.credentials.Clear(ctx); err != nil {
		logger.Warn("Failed to clear rejected credential: %v", err)
	}
}

// matchesNameFilter reports whether name contains one of the keywords.
// An empty filter matches everything.
func matchesNameFilter(name string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

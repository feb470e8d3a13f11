package services

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// minMeaningfulChars is the fewest non-whitespace characters a document
// needs to be considered non-empty.
const minMeaningfulChars = 10

// DocumentAcquirer downloads documents and extracts their text.
type DocumentAcquirer struct {
	extractors  driven.ExtractorRegistry
	concurrency int
}

// NewDocumentAcquirer creates an acquirer running at most concurrency
// downloads at once.
func NewDocumentAcquirer(extractors driven.ExtractorRegistry, concurrency int) *DocumentAcquirer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DocumentAcquirer{extractors: extractors, concurrency: concurrency}
}

// Acquire fetches and extracts every handle. Documents that cannot be
// downloaded, have an unsupported type, are corrupt or are empty are logged
// and left out; the rest keep input order. A rejected credential aborts
// the whole batch with domain.ErrAuthExpired.
func (a *DocumentAcquirer) Acquire(
	ctx context.Context,
	store driven.DocumentStore,
	credential string,
	handles []domain.DocumentHandle,
) ([]domain.ExtractedDocument, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty credential", domain.ErrInvalidInput)
	}
	for _, h := range handles {
		if h.LocatorPath == "" {
			return nil, fmt.Errorf("%w: document %q has no locator path", domain.ErrInvalidInput, h.DisplayName)
		}
	}

	defer logger.Stage("Document Acquisition")()
	logger.Debug("Fetching %d documents (concurrency %d)", len(handles), a.concurrency)

	extracted := make([]*domain.ExtractedDocument, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, h := range handles {
		g.Go(func() error {
			doc, err := a.acquireOne(gctx, store, credential, h)
			if err != nil {
				if errors.Is(err, domain.ErrAuthExpired) || gctx.Err() != nil {
					return err
				}
				logger.Warn("Skipping %s: %v", h.DisplayName, err)
				return nil
			}
			if doc.Outcome != domain.ExtractionSuccess {
				logger.Debug("Skipping %s: %s", h.DisplayName, doc.Outcome)
				return nil
			}
			extracted[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]domain.ExtractedDocument, 0, len(handles))
	for _, d := range extracted {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	logger.Info("Acquired %d of %d documents", len(docs), len(handles))
	return docs, nil
}

func (a *DocumentAcquirer) acquireOne(
	ctx context.Context,
	store driven.DocumentStore,
	credential string,
	h domain.DocumentHandle,
) (domain.ExtractedDocument, error) {
	doc := domain.ExtractedDocument{Handle: h}

	extractor, ok := a.extractors.For(h.Extension())
	if !ok || !h.Downloadable {
		doc.Outcome = domain.ExtractionUnsupported
		return doc, nil
	}

	data, err := store.Download(ctx, credential, h.LocatorPath)
	if err != nil {
		return doc, fmt.Errorf("download: %w", err)
	}

	text, err := extractor.Extract(ctx, data)
	if err != nil {
		logger.Debug("Extract %s: %v", h.DisplayName, err)
		doc.Outcome = domain.ExtractionCorrupt
		return doc, nil
	}

	if meaningfulChars(text) < minMeaningfulChars {
		doc.Outcome = domain.ExtractionEmpty
		return doc, nil
	}

	doc.Text = text
	doc.Outcome = domain.ExtractionSuccess
	return doc, nil
}

func meaningfulChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

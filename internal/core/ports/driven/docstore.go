package driven

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// DocumentStore enumerates and downloads candidate documents.
//
// Download must wrap domain.ErrAuthExpired when the credential is rejected
// and domain.ErrNotFound when the path does not exist, so callers can tell
// these apart from retryable domain.ErrUpstreamUnavailable failures.
type DocumentStore interface {
	// ListFiles returns every file visible with the credential.
	ListFiles(ctx context.Context, credential string) ([]domain.DocumentHandle, error)

	// Download returns the raw bytes at locatorPath.
	Download(ctx context.Context, credential, locatorPath string) ([]byte, error)
}

// AccountResolver is an optional DocumentStore capability that names the
// account behind a credential (e.g. an email address).
type AccountResolver interface {
	AccountIdentifier(ctx context.Context, credential string) (string, error)
}

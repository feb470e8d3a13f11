package driven

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// CredentialsStore persists tokens per document store provider.
type CredentialsStore interface {
	// Save stores credentials. Creates if new, updates if exists.
	Save(ctx context.Context, creds domain.Credentials) error

	// Get retrieves credentials for a provider.
	// Returns domain.ErrNotFound if none are stored.
	Get(ctx context.Context, provider string) (*domain.Credentials, error)

	// Delete removes credentials for a provider. Deleting nothing is not an error.
	Delete(ctx context.Context, provider string) error
}

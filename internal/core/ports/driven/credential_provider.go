package driven

import "context"

// CredentialProvider supplies the opaque bearer token for the document store.
// The pipeline only reads it; clearing happens after the store rejects it.
type CredentialProvider interface {
	// Get returns the current credential, refreshing it if possible.
	// Returns domain.ErrAuthRequired when no credential is available.
	Get(ctx context.Context) (string, error)

	// Clear forgets the credential.
	Clear(ctx context.Context) error
}

// Package auth provides the credential providers used to reach the document store.
package auth

import (
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// NewDropboxProvider selects how the Dropbox credential is obtained.
// A non-empty staticToken wins over stored OAuth credentials.
// refresher can be nil.
func NewDropboxProvider(
	store driven.CredentialsStore,
	refresher TokenRefresher,
	staticToken string,
) driven.CredentialProvider {
	if staticToken != "" {
		logger.Debug("Using Dropbox access token from environment")
		return NewStaticProvider(staticToken)
	}
	return NewOAuthProvider(domain.ProviderDropbox, store, refresher)
}

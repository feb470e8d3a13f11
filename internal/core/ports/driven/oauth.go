package driven

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// OAuthClient performs the provider side of an authorisation code flow with PKCE.
type OAuthClient interface {
	// AuthCodeURL returns the URL the user visits to grant access.
	AuthCodeURL(state, verifier, redirectURI string) string

	// Exchange trades an authorisation code for tokens.
	Exchange(ctx context.Context, code, verifier, redirectURI string) (*domain.OAuthCredentials, error)
}

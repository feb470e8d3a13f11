package domain

import "time"

// ProviderDropbox is the credentials provider name of the Dropbox document store.
const ProviderDropbox = "dropbox"

// Credentials stores the user's tokens for one document store provider.
// There is at most one record per provider.
type Credentials struct {
	// Provider identifies the document store (e.g. "dropbox").
	Provider string `json:"provider"`

	// AccountIdentifier is the user's email or display name from the provider.
	AccountIdentifier string `json:"account_identifier,omitempty"`

	// OAuth holds the tokens.
	OAuth *OAuthCredentials `json:"oauth,omitempty"`

	// CreatedAt is when the credentials were created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the credentials were last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// OAuthCredentials stores OAuth tokens for a specific user account.
type OAuthCredentials struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitzero"`
}

// IsExpired returns true if the access token has expired.
func (c *OAuthCredentials) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// IsAuthenticated returns true if the credentials contain an access token.
func (c *Credentials) IsAuthenticated() bool {
	return c.OAuth != nil && c.OAuth.AccessToken != ""
}

// NeedsRefresh returns true if the access token expired and can be refreshed.
func (c *Credentials) NeedsRefresh() bool {
	if c.OAuth == nil {
		return false
	}
	return c.OAuth.IsExpired() && c.OAuth.RefreshToken != ""
}

// GetAccessToken returns the access token or an empty string.
func (c *Credentials) GetAccessToken() string {
	if c.OAuth == nil {
		return ""
	}
	return c.OAuth.AccessToken
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credentials) HasRefreshToken() bool {
	return c.OAuth != nil && c.OAuth.RefreshToken != ""
}

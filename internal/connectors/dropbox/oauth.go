package dropbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/coach/internal/adapters/driven/auth"
	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure OAuthClient implements the OAuthClient and TokenRefresher interfaces.
var (
	_ driven.OAuthClient  = (*OAuthClient)(nil)
	_ auth.TokenRefresher = (*OAuthClient)(nil)
)

// Endpoint is the Dropbox OAuth 2 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.dropbox.com/oauth2/authorize",
	TokenURL:  "https://api.dropboxapi.com/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scopes are the permissions requested from the user.
var Scopes = []string{"account_info.read", "files.metadata.read", "files.content.read"}

// OAuthClient runs the Dropbox authorisation code flow with PKCE.
type OAuthClient struct {
	config oauth2.Config
}

// NewOAuthClient creates a client for the app identified by appKey.
// appSecret can be empty for PKCE-only apps.
func NewOAuthClient(appKey, appSecret string) *OAuthClient {
	return newOAuthClient(appKey, appSecret, Endpoint)
}

func newOAuthClient(appKey, appSecret string, endpoint oauth2.Endpoint) *OAuthClient {
	return &OAuthClient{config: oauth2.Config{
		ClientID:     appKey,
		ClientSecret: appSecret,
		Endpoint:     endpoint,
		Scopes:       Scopes,
	}}
}

func (c *OAuthClient) withRedirect(redirectURI string) *oauth2.Config {
	cfg := c.config
	cfg.RedirectURL = redirectURI
	return &cfg
}

// AuthCodeURL returns the consent page URL. Offline access is requested so
// the exchange yields a refresh token.
func (c *OAuthClient) AuthCodeURL(state, verifier, redirectURI string) string {
	return c.withRedirect(redirectURI).AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("token_access_type", "offline"),
	)
}

// Exchange trades an authorisation code for tokens.
func (c *OAuthClient) Exchange(
	ctx context.Context,
	code, verifier, redirectURI string,
) (*domain.OAuthCredentials, error) {
	token, err := c.withRedirect(redirectURI).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError("exchange code", err, domain.ErrAuthInvalid)
	}
	return toCredentials(token), nil
}

// Refresh trades a refresh token for a new access token.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredentials, error) {
	source := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, tokenError("refresh token", err, domain.ErrAuthExpired)
	}
	return toCredentials(token), nil
}

// tokenError reports a rejection by the token endpoint as rejected and
// anything else as an upstream failure.
func tokenError(op string, err, rejected error) error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		status := 0
		if retrieve.Response != nil {
			status = retrieve.Response.StatusCode
		}
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return fmt.Errorf("%s: %s: %w", op, retrieve.ErrorCode, rejected)
		}
		return fmt.Errorf("%s: %w", op, &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: status,
			Message:    retrieve.ErrorDescription,
			Err:        err,
		})
	}
	return fmt.Errorf("%s: %w", op, &domain.UpstreamError{Service: serviceName, Err: err})
}

func toCredentials(token *oauth2.Token) *domain.OAuthCredentials {
	return &domain.OAuthCredentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
}

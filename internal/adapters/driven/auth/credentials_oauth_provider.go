package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure OAuthProvider implements the CredentialProvider interface.
var _ driven.CredentialProvider = (*OAuthProvider)(nil)

// TokenRefresher trades a refresh token for a fresh access token.
// It returns an error wrapping domain.ErrAuthExpired when the refresh
// token itself has been revoked.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthCredentials, error)
}

// OAuthProvider serves the stored access token of one provider and
// refreshes it shortly before it expires.
type OAuthProvider struct {
	provider  string
	store     driven.CredentialsStore
	refresher TokenRefresher

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
}

// NewOAuthProvider creates a credential provider backed by store.
// refresher can be nil, in which case expired tokens are reported as
// domain.ErrAuthExpired.
func NewOAuthProvider(provider string, store driven.CredentialsStore, refresher TokenRefresher) *OAuthProvider {
	return &OAuthProvider{
		provider:      provider,
		store:         store,
		refresher:     refresher,
		refreshBuffer: 5 * time.Minute,
	}
}

// Get returns a valid access token, refreshing it if necessary.
func (p *OAuthProvider) Get(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cachedToken != "" && time.Now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	creds, err := p.store.Get(ctx, p.provider)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("no %s credentials: %w", p.provider, domain.ErrAuthRequired)
	}
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}
	if !creds.IsAuthenticated() {
		return "", fmt.Errorf("no %s access token: %w", p.provider, domain.ErrAuthRequired)
	}

	if p.expiresSoon(creds.OAuth) {
		if err := p.refresh(ctx, creds); err != nil {
			return "", err
		}
	}

	p.cachedToken = creds.OAuth.AccessToken
	if creds.OAuth.Expiry.IsZero() {
		p.cacheExpiry = time.Now().Add(time.Hour)
	} else {
		p.cacheExpiry = creds.OAuth.Expiry.Add(-p.refreshBuffer)
	}

	return p.cachedToken, nil
}

func (p *OAuthProvider) expiresSoon(tokens *domain.OAuthCredentials) bool {
	if tokens.Expiry.IsZero() {
		return false
	}
	return time.Until(tokens.Expiry) < p.refreshBuffer
}

// refresh replaces the tokens in creds and persists them. Caller holds mu.
func (p *OAuthProvider) refresh(ctx context.Context, creds *domain.Credentials) error {
	if p.refresher == nil || !creds.HasRefreshToken() {
		if creds.OAuth.IsExpired() {
			return fmt.Errorf("%s access token expired: %w", p.provider, domain.ErrAuthExpired)
		}
		// Still valid for a few minutes; use it as is.
		return nil
	}

	logger.Debug("Refreshing %s access token (expires %s)", p.provider, creds.OAuth.Expiry.Format(time.RFC3339))

	fresh, err := p.refresher.Refresh(ctx, creds.OAuth.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	creds.OAuth.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		creds.OAuth.RefreshToken = fresh.RefreshToken
	}
	if fresh.TokenType != "" {
		creds.OAuth.TokenType = fresh.TokenType
	}
	creds.OAuth.Expiry = fresh.Expiry
	creds.UpdatedAt = time.Now()

	if err := p.store.Save(ctx, *creds); err != nil {
		return fmt.Errorf("save refreshed credentials: %w", err)
	}
	return nil
}

// Clear drops the cached token and deletes the stored credentials.
func (p *OAuthProvider) Clear(ctx context.Context) error {
	p.InvalidateCache()
	if err := p.store.Delete(ctx, p.provider); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

// InvalidateCache forgets the cached token so the next Get reads the store.
func (p *OAuthProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}

package auth

import (
	"context"
	"sync"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure StaticProvider implements the CredentialProvider interface.
var _ driven.CredentialProvider = (*StaticProvider)(nil)

// StaticProvider serves a long-lived token supplied out of band,
// such as DROPBOX_ACCESS_TOKEN. It never refreshes.
type StaticProvider struct {
	mu    sync.Mutex
	token string
}

// NewStaticProvider creates a provider for token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// Get returns the token, or domain.ErrAuthRequired once it was cleared.
func (p *StaticProvider) Get(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// Clear forgets the token for the rest of the process.
func (p *StaticProvider) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	return nil
}

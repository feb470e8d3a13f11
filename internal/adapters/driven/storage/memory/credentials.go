package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// CredentialsStore is an in-memory implementation of driven.CredentialsStore.
type CredentialsStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credentials
}

// NewCredentialsStore creates a new in-memory credentials store.
func NewCredentialsStore() *CredentialsStore {
	return &CredentialsStore{
		creds: make(map[string]domain.Credentials),
	}
}

// Save stores or replaces the credentials of a provider.
func (s *CredentialsStore) Save(_ context.Context, creds domain.Credentials) error {
	if creds.Provider == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if creds.OAuth != nil {
		tokens := *creds.OAuth
		creds.OAuth = &tokens
	}
	s.creds[creds.Provider] = creds
	return nil
}

// Get retrieves the credentials of a provider.
func (s *CredentialsStore) Get(_ context.Context, provider string) (*domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.creds[provider]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if creds.OAuth != nil {
		tokens := *creds.OAuth
		creds.OAuth = &tokens
	}
	return &creds, nil
}

// Delete removes the credentials of a provider.
func (s *CredentialsStore) Delete(_ context.Context, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, provider)
	return nil
}

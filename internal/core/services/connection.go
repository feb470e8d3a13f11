package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure ConnectionService implements the interface.
var _ driving.ConnectionService = (*ConnectionService)(nil)

// pendingAuthorization is an authorisation flow waiting for its callback.
type pendingAuthorization struct {
	state       string
	verifier    string
	redirectURI string
}

// ConnectionService drives the Dropbox connection state machine and
// persists the resulting credentials.
type ConnectionService struct {
	mu       sync.Mutex
	store    driven.CredentialsStore
	oauth    driven.OAuthClient
	accounts driven.AccountResolver
	state    domain.ConnectionState
	pending  *pendingAuthorization
}

// NewConnectionService creates a new connection service.
// The oauth and accounts parameters are optional (can be nil). Without an
// OAuth client only ConnectWithToken is available.
func NewConnectionService(
	store driven.CredentialsStore,
	oauth driven.OAuthClient,
	accounts driven.AccountResolver,
) *ConnectionService {
	return &ConnectionService{
		store:    store,
		oauth:    oauth,
		accounts: accounts,
		state:    domain.IdleConnection(),
	}
}

// Begin starts an authorisation code flow with PKCE.
func (s *ConnectionService) Begin(_ context.Context, redirectURI string) (string, string, error) {
	if s.oauth == nil {
		return "", "", fmt.Errorf("%w: no Dropbox app key configured", domain.ErrInvalidInput)
	}
	if redirectURI == "" {
		return "", "", fmt.Errorf("%w: redirect URI is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Apply(domain.ConnectionEvent{Kind: domain.EventAuthorizationStarted})
	if err != nil {
		return "", "", err
	}

	state, err := generateState()
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}

	s.pending = &pendingAuthorization{
		state:       state,
		verifier:    oauth2.GenerateVerifier(),
		redirectURI: redirectURI,
	}
	s.state = next
	logger.Debug("Connection: %s", s.state.Phase)

	return s.oauth.AuthCodeURL(state, s.pending.verifier, redirectURI), state, nil
}

// AuthorizationReceived exchanges the code from the callback for tokens.
func (s *ConnectionService) AuthorizationReceived(ctx context.Context, state, code string) error {
	s.mu.Lock()
	pending := s.pending
	if pending == nil || s.state.Phase != domain.PhaseAwaitingUserAuthorization {
		s.mu.Unlock()
		return fmt.Errorf("%w: no authorisation in progress", domain.ErrInvalidTransition)
	}
	if state != pending.state {
		s.mu.Unlock()
		return fmt.Errorf("%w: state mismatch", domain.ErrAuthInvalid)
	}

	next, err := s.state.Apply(domain.ConnectionEvent{Kind: domain.EventAuthorizationReceived, Code: code})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.pending = nil
	s.mu.Unlock()

	if next.Phase == domain.PhaseFailed {
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, next.Reason)
	}

	tokens, err := s.oauth.Exchange(ctx, code, pending.verifier, pending.redirectURI)
	if err != nil {
		s.transition(domain.ConnectionEvent{Kind: domain.EventExchangeFailed, Reason: err.Error()})
		return fmt.Errorf("exchange authorisation code: %w", err)
	}

	account := s.accountFor(ctx, tokens.AccessToken)
	if err := s.save(ctx, tokens, account); err != nil {
		s.transition(domain.ConnectionEvent{Kind: domain.EventExchangeFailed, Reason: err.Error()})
		return err
	}

	s.transition(domain.ConnectionEvent{Kind: domain.EventExchangeSucceeded, Account: account})
	return nil
}

// AuthorizationDenied records that the user or provider refused access.
func (s *ConnectionService) AuthorizationDenied(_ context.Context, reason string) error {
	if reason == "" {
		reason = "authorisation denied"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.Apply(domain.ConnectionEvent{Kind: domain.EventExchangeFailed, Reason: reason})
	if err != nil {
		return err
	}
	s.state = next
	s.pending = nil
	return nil
}

// ConnectWithToken stores a bearer token obtained outside the app.
func (s *ConnectionService) ConnectWithToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}

	account := ""
	if s.accounts != nil {
		id, err := s.accounts.AccountIdentifier(ctx, token)
		switch {
		case errors.Is(err, domain.ErrAuthExpired):
			return fmt.Errorf("%w: token was rejected", domain.ErrAuthInvalid)
		case err != nil:
			logger.Warn("Could not look up account: %v", err)
		default:
			account = id
		}
	}

	if err := s.save(ctx, &domain.OAuthCredentials{AccessToken: token, TokenType: "bearer"}, account); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.state, _ = s.state.Apply(domain.ConnectionEvent{Kind: domain.EventTokenProvided, Account: account})
	return nil
}

// Status reports the connection state, reconciled with the stored credential.
func (s *ConnectionService) Status(ctx context.Context) domain.ConnectionStatus {
	creds, err := s.store.Get(ctx, domain.ProviderDropbox)
	has := err == nil && creds.IsAuthenticated()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Read credentials: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case has && s.state.Phase == domain.PhaseIdle:
		s.state = domain.ConnectionState{Phase: domain.PhaseConnected, Account: creds.AccountIdentifier}
	case !has && s.state.Phase == domain.PhaseConnected:
		s.state = domain.IdleConnection()
	}
	return domain.ConnectionStatus{State: s.state, HasCredential: has}
}

// Disconnect forgets the stored credential.
func (s *ConnectionService) Disconnect(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.ProviderDropbox); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	s.transition(domain.ConnectionEvent{Kind: domain.EventDisconnected})
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
	return nil
}

func (s *ConnectionService) transition(ev domain.ConnectionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Apply(ev)
	if err != nil {
		logger.Warn("Connection: %v", err)
		return
	}
	s.state = next
	logger.Debug("Connection: %s", s.state.Phase)
}

func (s *ConnectionService) accountFor(ctx context.Context, token string) string {
	if s.accounts == nil {
		return ""
	}
	id, err := s.accounts.AccountIdentifier(ctx, token)
	if err != nil {
		logger.Warn("Could not look up account: %v", err)
		return ""
	}
	return id
}

func (s *ConnectionService) save(ctx context.Context, tokens *domain.OAuthCredentials, account string) error {
	now := time.Now()
	creds := domain.Credentials{
		Provider:          domain.ProviderDropbox,
		AccountIdentifier: account,
		OAuth:             tokens,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if existing, err := s.store.Get(ctx, domain.ProviderDropbox); err == nil {
		creds.CreatedAt = existing.CreatedAt
	}
	if err := s.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

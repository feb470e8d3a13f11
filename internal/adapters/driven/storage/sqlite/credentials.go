package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// credentialsStore implements driven.CredentialsStore.
type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

// Save stores or replaces the credentials of a provider.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.Provider == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if creds.CreatedAt.IsZero() {
		creds.CreatedAt = now
	}
	if creds.UpdatedAt.IsZero() {
		creds.UpdatedAt = now
	}

	oauthJSON, err := json.Marshal(creds.OAuth)
	if err != nil {
		return fmt.Errorf("marshalling oauth credentials: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (provider, account_identifier, oauth, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			account_identifier = excluded.account_identifier,
			oauth = excluded.oauth,
			updated_at = excluded.updated_at
	`, creds.Provider, creds.AccountIdentifier, string(oauthJSON), creds.CreatedAt, creds.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves the credentials of a provider.
func (s *credentialsStore) Get(ctx context.Context, provider string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT provider, account_identifier, oauth, created_at, updated_at
		FROM credentials WHERE provider = ?
	`, provider)

	var creds domain.Credentials
	var oauthJSON sql.NullString
	if err := row.Scan(&creds.Provider, &creds.AccountIdentifier, &oauthJSON,
		&creds.CreatedAt, &creds.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var oauth domain.OAuthCredentials
		if err := json.Unmarshal([]byte(oauthJSON.String), &oauth); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth credentials: %w", err)
		}
		creds.OAuth = &oauth
	}

	return &creds, nil
}

// Delete removes the credentials of a provider.
func (s *credentialsStore) Delete(ctx context.Context, provider string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE provider = ?", provider); err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}

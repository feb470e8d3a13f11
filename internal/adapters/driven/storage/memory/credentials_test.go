package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func TestCredentialsStore_SaveGetDelete(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	_, err := store.Get(ctx, domain.ProviderDropbox)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.Credentials{
		Provider:          domain.ProviderDropbox,
		AccountIdentifier: "docent@school.nl",
		OAuth:             &domain.OAuthCredentials{AccessToken: "tok"},
	}))

	got, err := store.Get(ctx, domain.ProviderDropbox)
	require.NoError(t, err)
	assert.Equal(t, "docent@school.nl", got.AccountIdentifier)
	assert.Equal(t, "tok", got.GetAccessToken())

	require.NoError(t, store.Delete(ctx, domain.ProviderDropbox))
	_, err = store.Get(ctx, domain.ProviderDropbox)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting nothing is fine.
	assert.NoError(t, store.Delete(ctx, domain.ProviderDropbox))
}

func TestCredentialsStore_ReturnsCopies(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.Credentials{
		Provider: domain.ProviderDropbox,
		OAuth:    &domain.OAuthCredentials{AccessToken: "tok"},
	}))

	got, err := store.Get(ctx, domain.ProviderDropbox)
	require.NoError(t, err)
	got.OAuth.AccessToken = "changed"

	again, err := store.Get(ctx, domain.ProviderDropbox)
	require.NoError(t, err)
	assert.Equal(t, "tok", again.OAuth.AccessToken)
}

func TestCredentialsStore_RequiresProvider(t *testing.T) {
	err := NewCredentialsStore().Save(context.Background(), domain.Credentials{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

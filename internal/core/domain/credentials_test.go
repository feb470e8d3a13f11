package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOAuthCredentials_IsExpired(t *testing.T) {
	assert.False(t, (&OAuthCredentials{}).IsExpired())
	assert.True(t, (&OAuthCredentials{Expiry: time.Now().Add(-time.Minute)}).IsExpired())
	assert.False(t, (&OAuthCredentials{Expiry: time.Now().Add(time.Hour)}).IsExpired())
}

func TestCredentials_Tokens(t *testing.T) {
	var empty Credentials
	assert.False(t, empty.IsAuthenticated())
	assert.Empty(t, empty.GetAccessToken())
	assert.False(t, empty.HasRefreshToken())
	assert.False(t, empty.NeedsRefresh())

	creds := Credentials{
		Provider: "dropbox",
		OAuth: &OAuthCredentials{
			AccessToken:  "sl.abc",
			RefreshToken: "r1",
			Expiry:       time.Now().Add(-time.Second),
		},
	}
	assert.True(t, creds.IsAuthenticated())
	assert.Equal(t, "sl.abc", creds.GetAccessToken())
	assert.True(t, creds.HasRefreshToken())
	assert.True(t, creds.NeedsRefresh())
}

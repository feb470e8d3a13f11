// Package dropbox implements the Dropbox document store.
//
// Store lists and downloads files with the Dropbox SDK, throttled by a
// shared rate limiter and retried on transient failures. OAuthClient runs
// the authorisation code flow with PKCE and refreshes offline tokens.
package dropbox

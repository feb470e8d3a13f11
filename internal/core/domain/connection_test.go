package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionState_HappyPath(t *testing.T) {
	s := IdleConnection()

	s, err := s.Apply(ConnectionEvent{Kind: EventAuthorizationStarted})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingUserAuthorization, s.Phase)

	s, err = s.Apply(ConnectionEvent{Kind: EventAuthorizationReceived, Code: "abc"})
	require.NoError(t, err)
	assert.Equal(t, PhaseExchangingCode, s.Phase)

	s, err = s.Apply(ConnectionEvent{Kind: EventExchangeSucceeded, Account: "docent@school.nl"})
	require.NoError(t, err)
	assert.Equal(t, PhaseConnected, s.Phase)
	assert.Equal(t, "docent@school.nl", s.Account)
}

func TestConnectionState_ExchangeFailed(t *testing.T) {
	s := ConnectionState{Phase: PhaseExchangingCode}

	s, err := s.Apply(ConnectionEvent{Kind: EventExchangeFailed, Reason: "invalid_grant"})
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, "invalid_grant", s.Reason)
}

func TestConnectionState_EmptyCodeFails(t *testing.T) {
	s := ConnectionState{Phase: PhaseAwaitingUserAuthorization}

	s, err := s.Apply(ConnectionEvent{Kind: EventAuthorizationReceived})
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.NotEmpty(t, s.Reason)
}

func TestConnectionState_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		phase ConnectionPhase
		event ConnectionEventKind
	}{
		{"code while idle", PhaseIdle, EventAuthorizationReceived},
		{"success while awaiting", PhaseAwaitingUserAuthorization, EventExchangeSucceeded},
		{"success while connected", PhaseConnected, EventExchangeSucceeded},
		{"restart while exchanging", PhaseExchangingCode, EventAuthorizationStarted},
		{"failure while idle", PhaseIdle, EventExchangeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := ConnectionState{Phase: tt.phase}
			next, err := start.Apply(ConnectionEvent{Kind: tt.event, Code: "c"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.Equal(t, start, next)
		})
	}
}

func TestConnectionState_DisconnectAndTokenFromAnyPhase(t *testing.T) {
	for _, p := range []ConnectionPhase{PhaseIdle, PhaseAwaitingUserAuthorization, PhaseExchangingCode, PhaseConnected, PhaseFailed} {
		s, err := ConnectionState{Phase: p}.Apply(ConnectionEvent{Kind: EventDisconnected})
		require.NoError(t, err)
		assert.Equal(t, PhaseIdle, s.Phase)

		s, err = ConnectionState{Phase: p}.Apply(ConnectionEvent{Kind: EventTokenProvided, Account: "a"})
		require.NoError(t, err)
		assert.Equal(t, PhaseConnected, s.Phase)
	}
}

func TestConnectionPhase_Description(t *testing.T) {
	assert.Equal(t, "Connected", PhaseConnected.Description())
	assert.Equal(t, "Unknown", ConnectionPhase("x").Description())
}

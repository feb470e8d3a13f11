package domain

import "fmt"

// ConnectionPhase is a state of the document store connection.
type ConnectionPhase string

// Connection phases.
const (
	PhaseIdle                      ConnectionPhase = "idle"
	PhaseAwaitingUserAuthorization ConnectionPhase = "awaiting_user_authorization"
	PhaseExchangingCode            ConnectionPhase = "exchanging_code"
	PhaseConnected                 ConnectionPhase = "connected"
	PhaseFailed                    ConnectionPhase = "failed"
)

// String returns the string representation.
func (p ConnectionPhase) String() string {
	return string(p)
}

// Description returns a human-readable description of the phase.
func (p ConnectionPhase) Description() string {
	switch p {
	case PhaseIdle:
		return "Not connected"
	case PhaseAwaitingUserAuthorization:
		return "Waiting for authorisation in the browser"
	case PhaseExchangingCode:
		return "Exchanging authorisation code"
	case PhaseConnected:
		return "Connected"
	case PhaseFailed:
		return "Connection failed"
	default:
		return "Unknown"
	}
}

// ConnectionEventKind identifies a connection event.
type ConnectionEventKind string

// Connection events.
const (
	EventAuthorizationStarted  ConnectionEventKind = "authorization_started"
	EventAuthorizationReceived ConnectionEventKind = "authorization_received"
	EventExchangeSucceeded     ConnectionEventKind = "exchange_succeeded"
	EventExchangeFailed        ConnectionEventKind = "exchange_failed"
	EventTokenProvided         ConnectionEventKind = "token_provided"
	EventDisconnected          ConnectionEventKind = "disconnected"
)

// ConnectionEvent drives the connection state machine.
type ConnectionEvent struct {
	Kind ConnectionEventKind

	// Code is the authorisation code for EventAuthorizationReceived.
	Code string

	// Reason explains EventExchangeFailed.
	Reason string

	// Account is the account identifier for EventExchangeSucceeded and EventTokenProvided.
	Account string
}

// ConnectionState is the current phase plus context for it.
type ConnectionState struct {
	Phase ConnectionPhase

	// Reason is set in PhaseFailed.
	Reason string

	// Account is set in PhaseConnected when the identifier is known.
	Account string
}

// IdleConnection returns the initial state.
func IdleConnection() ConnectionState {
	return ConnectionState{Phase: PhaseIdle}
}

// Apply returns the state that follows ev, or ErrInvalidTransition.
func (s ConnectionState) Apply(ev ConnectionEvent) (ConnectionState, error) {
	switch ev.Kind {
	case EventDisconnected:
		return IdleConnection(), nil

	case EventTokenProvided:
		return ConnectionState{Phase: PhaseConnected, Account: ev.Account}, nil

	case EventAuthorizationStarted:
		if s.Phase == PhaseExchangingCode {
			break
		}
		return ConnectionState{Phase: PhaseAwaitingUserAuthorization}, nil

	case EventAuthorizationReceived:
		if s.Phase != PhaseAwaitingUserAuthorization {
			break
		}
		if ev.Code == "" {
			return ConnectionState{Phase: PhaseFailed, Reason: "no authorisation code received"}, nil
		}
		return ConnectionState{Phase: PhaseExchangingCode}, nil

	case EventExchangeSucceeded:
		if s.Phase != PhaseExchangingCode {
			break
		}
		return ConnectionState{Phase: PhaseConnected, Account: ev.Account}, nil

	case EventExchangeFailed:
		if s.Phase != PhaseExchangingCode && s.Phase != PhaseAwaitingUserAuthorization {
			break
		}
		reason := ev.Reason
		if reason == "" {
			reason = "authorisation failed"
		}
		return ConnectionState{Phase: PhaseFailed, Reason: reason}, nil
	}

	return s, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, ev.Kind, s.Phase)
}

// ConnectionStatus is reported to users.
type ConnectionStatus struct {
	State ConnectionState

	// HasCredential is true when a stored credential exists.
	HasCredential bool
}

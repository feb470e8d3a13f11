package driving

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// ConnectionService manages the document store connection.
type ConnectionService interface {
	// Begin starts an authorisation flow and returns the URL to visit and
	// the state value the callback must echo.
	Begin(ctx context.Context, redirectURI string) (authURL, state string, err error)

	// AuthorizationReceived completes the flow with the callback parameters.
	AuthorizationReceived(ctx context.Context, state, code string) error

	// AuthorizationDenied records a provider-side refusal.
	AuthorizationDenied(ctx context.Context, reason string) error

	// ConnectWithToken stores a bearer token directly.
	ConnectWithToken(ctx context.Context, token string) error

	// Status reports the current connection state.
	Status(ctx context.Context) domain.ConnectionStatus

	// Disconnect forgets the stored credential.
	Disconnect(ctx context.Context) error
}

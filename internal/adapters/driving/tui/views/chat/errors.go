package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoAskService indicates that no ask service was provided.
	ErrNoAskService = errors.New("ask service is required")
)

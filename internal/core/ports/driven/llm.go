package driven

import "context"

// CompletionService provides hosted language model completions.
// It is used both to judge document relevance and to stream answers.
//
// Implementations include:
//   - Gemini API (REST, API key)
//   - Gemini on Vertex AI
type CompletionService interface {
	// Generate returns the complete response text for a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Stream starts a streaming completion. The channel yields delta events
	// and is closed after exactly one terminal done or error event, or when
	// ctx is cancelled.
	Stream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan StreamEvent, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider to respond with a JSON document.
	JSON bool
}

// StreamEventType identifies a streaming completion record.
type StreamEventType string

// Stream event types.
const (
	StreamDelta StreamEventType = "delta"
	StreamDone  StreamEventType = "done"
	StreamError StreamEventType = "error"
)

// StreamEvent is one record of a streaming completion.
type StreamEvent struct {
	Type StreamEventType

	// Text is the token delta for StreamDelta.
	Text string

	// Err is set for StreamError.
	Err error
}

// Package gemini provides a completion service adapter for the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/ratelimit"
	"github.com/custodia-labs/coach/internal/retry"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultLLMModel   = "gemini-2.0-flash"
	DefaultLLMTimeout = 120 * time.Second
)

const serviceName = "gemini"

// LLMConfig holds configuration for the Gemini completion service.
type LLMConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: DefaultBaseURL).
	BaseURL string

	// Model is the model to use (default: DefaultLLMModel).
	Model string

	// Timeout bounds a non-streaming request (default: 120s).
	// Streams are bounded by the caller's context only.
	Timeout time.Duration

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond int
}

// LLMService provides completions using the Gemini REST API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	limiter *ratelimit.Limiter
	policy  retry.Policy
}

// generateRequest is the generateContent request format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

// generateResponse is the generateContent response format. Streamed
// chunks use the same shape.
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewLLMService creates a new Gemini completion service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: ratelimit.New(serviceName, cfg.RequestsPerSecond),
		policy:  retry.DefaultPolicy(),
	}, nil
}

// Generate returns the complete response text for a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.requestBody(prompt, opts)
	if err != nil {
		return "", err
	}

	return retry.Do(ctx, s.policy, "gemini generate", func(ctx context.Context) (string, error) {
		resp, err := s.post(ctx, ":generateContent", body)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", &domain.UpstreamError{Service: serviceName, Message: "read response", Err: err}
		}

		var out generateResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return out.text()
	})
}

// Stream starts a server-sent-events completion. Connection failures are
// retried; once the first byte arrives the stream is never restarted.
func (s *LLMService) Stream(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
) (<-chan driven.StreamEvent, error) {
	body, err := s.requestBody(prompt, opts)
	if err != nil {
		return nil, err
	}

	resp, err := retry.Do(ctx, s.policy, "gemini stream", func(ctx context.Context) (*http.Response, error) {
		return s.post(ctx, ":streamGenerateContent?alt=sse", body)
	})
	if err != nil {
		return nil, err
	}

	events := make(chan driven.StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		readStream(ctx, resp.Body, events)
	}()
	return events, nil
}

func (s *LLMService) requestBody(prompt string, opts driven.GenerateOptions) ([]byte, error) {
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}

	cfg := &generationConfig{}
	if opts.Temperature > 0 {
		t := opts.Temperature
		cfg.Temperature = &t
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if *cfg != (generationConfig{}) {
		reqBody.GenerationConfig = cfg
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return jsonBody, nil
}

// post sends body to the model endpoint and returns a 200 response.
// Any other status is converted to an error and the body closed.
func (s *LLMService) post(ctx context.Context, suffix string, body []byte) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := s.baseURL + "/models/" + url.PathEscape(s.model) + suffix
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.UpstreamError{Service: serviceName, Message: "send request", Err: err}
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode == http.StatusTooManyRequests {
		s.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	return nil, statusError(resp.StatusCode, raw)
}

// statusError classifies a non-200 response.
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var wrapped generateResponse
	if json.Unmarshal(body, &wrapped) == nil && wrapped.Error != nil {
		msg = wrapped.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: gemini rejected the API key (status %d): %s", domain.ErrLLMUnavailable, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: gemini model not found: %s", domain.ErrLLMUnavailable, msg)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: gemini: %s", domain.ErrInvalidInput, msg)
	default:
		return &domain.UpstreamError{Service: serviceName, StatusCode: status, Message: msg}
	}
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// text joins the parts of the first candidate.
func (r *generateResponse) text() (string, error) {
	if r.Error != nil {
		return "", &domain.UpstreamError{Service: serviceName, StatusCode: r.Error.Code, Message: r.Error.Message}
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: gemini blocked the prompt: %s", domain.ErrInvalidInput, r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by fetching the model description.
func (s *LLMService) Ping(ctx context.Context) error {
	endpoint := s.baseURL + "/models/" + url.PathEscape(s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return statusError(resp.StatusCode, body)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

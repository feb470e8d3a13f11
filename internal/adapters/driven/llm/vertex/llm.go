// Package vertex provides a completion service adapter for Gemini models
// hosted on Google Cloud Vertex AI. Credentials come from the environment
// (Application Default Credentials).
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"

	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/ratelimit"
	"github.com/custodia-labs/coach/internal/retry"
)

// Ensure LLMService implements the interface.
var _ driven.CompletionService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = "gemini-2.0-flash"
	DefaultLocation   = "europe-west4"
	DefaultLLMTimeout = 120 * time.Second
)

const serviceName = "vertex"

// LLMConfig holds configuration for the Vertex AI completion service.
type LLMConfig struct {
	// Project is the Google Cloud project ID (required).
	Project string

	// Location is the Vertex AI region (default: DefaultLocation).
	Location string

	// Model is the model to use (default: DefaultLLMModel).
	Model string

	// Timeout bounds a non-streaming request (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond int
}

// responseIterator yields streamed responses until iterator.Done.
type responseIterator interface {
	Next() (*genai.GenerateContentResponse, error)
}

// model is the part of a generative model the service uses.
type model interface {
	generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
	stream(ctx context.Context, prompt string) responseIterator
	countTokens(ctx context.Context, prompt string) error
}

// LLMService provides completions using Vertex AI.
type LLMService struct {
	modelName string
	timeout   time.Duration
	newModel  func(opts driven.GenerateOptions) model
	closer    func() error
	limiter   *ratelimit.Limiter
	policy    retry.Policy
}

// NewLLMService creates a Vertex AI completion service.
func NewLLMService(ctx context.Context, cfg LLMConfig) (*LLMService, error) {
	cfg, err := withDefaults(cfg)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("vertex: create client: %w", err)
	}

	s := newService(cfg, func(opts driven.GenerateOptions) model {
		return newGenaiModel(client, cfg.Model, opts)
	})
	s.closer = client.Close
	return s, nil
}

func withDefaults(cfg LLMConfig) (LLMConfig, error) {
	if cfg.Project == "" {
		return cfg, fmt.Errorf("vertex: project is required")
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return cfg, nil
}

func newService(cfg LLMConfig, newModel func(driven.GenerateOptions) model) *LLMService {
	return &LLMService{
		modelName: cfg.Model,
		timeout:   cfg.Timeout,
		newModel:  newModel,
		limiter:   ratelimit.New(serviceName, cfg.RequestsPerSecond),
		policy:    retry.DefaultPolicy(),
	}
}

// Generate returns the complete response text for a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m := s.newModel(opts)
	return retry.Do(ctx, s.policy, "vertex generate", func(ctx context.Context) (string, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
		resp, err := m.generate(ctx, prompt)
		if err != nil {
			return "", s.classify(err)
		}
		return responseText(resp), nil
	})
}

// Stream starts a streaming completion. The first response is fetched
// before returning so connection failures surface as an error here.
func (s *LLMService) Stream(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
) (<-chan driven.StreamEvent, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	it := s.newModel(opts).stream(ctx, prompt)
	first, err := it.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return nil, s.classify(err)
	}

	events := make(chan driven.StreamEvent)
	go func() {
		defer close(events)
		s.pump(ctx, it, first, err, events)
	}()
	return events, nil
}

// pump forwards iterator responses until Done or the first failure.
func (s *LLMService) pump(
	ctx context.Context,
	it responseIterator,
	resp *genai.GenerateContentResponse,
	err error,
	events chan<- driven.StreamEvent,
) {
	send := func(ev driven.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if errors.Is(err, iterator.Done) {
			send(driven.StreamEvent{Type: driven.StreamDone})
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				send(driven.StreamEvent{Type: driven.StreamError, Err: s.classify(err)})
			}
			return
		}
		if text := responseText(resp); text != "" {
			if !send(driven.StreamEvent{Type: driven.StreamDelta, Text: text}) {
				return
			}
		}
		resp, err = it.Next()
	}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// ModelName returns the name of the model being used.
func (s *LLMService) ModelName() string {
	return s.modelName
}

// Ping checks credentials and model access with a token count request.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.newModel(driven.GenerateOptions{}).countTokens(ctx, "ping"); err != nil {
		return fmt.Errorf("vertex: ping failed: %w", s.classify(err))
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// genaiModel adapts a configured genai.GenerativeModel.
type genaiModel struct {
	m *genai.GenerativeModel
}

func newGenaiModel(client *genai.Client, name string, opts driven.GenerateOptions) *genaiModel {
	m := client.GenerativeModel(name)
	if opts.Temperature > 0 {
		m.SetTemperature(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.JSON {
		m.ResponseMIMEType = "application/json"
	}
	return &genaiModel{m: m}
}

func (g *genaiModel) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	return g.m.GenerateContent(ctx, genai.Text(prompt))
}

func (g *genaiModel) stream(ctx context.Context, prompt string) responseIterator {
	return g.m.GenerateContentStream(ctx, genai.Text(prompt))
}

func (g *genaiModel) countTokens(ctx context.Context, prompt string) error {
	_, err := g.m.CountTokens(ctx, genai.Text(prompt))
	return err
}

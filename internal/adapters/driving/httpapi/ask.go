package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// Stream event types.
const (
	EventMeta  = "meta"
	EventDelta = "delta"
	EventDone  = "done"
	EventError = "error"
)

// AskRequest represents the HTTP request payload for a question.
type AskRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
	Source   string `json:"source,omitempty"`
	MaxFiles int    `json:"max_files,omitempty"`
}

// StreamEvent is one line of the NDJSON answer stream.
type StreamEvent struct {
	Type string `json:"type"`

	// Text is the delta for EventDelta.
	Text string `json:"text,omitempty"`

	// Sources, NoSources and Omitted are set on EventMeta.
	Sources   []domain.SourceRef `json:"sources,omitempty"`
	NoSources bool               `json:"no_sources,omitempty"`
	Omitted   []string           `json:"omitted,omitempty"`

	// Answer is set on EventDone.
	Answer *domain.Answer `json:"answer,omitempty"`

	// Error and Code are set on EventError.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

type askHandler struct {
	ask driving.AskService
}

// ServeHTTP prepares the answer and streams it as NDJSON.
// Failures before streaming starts are plain JSON errors with a status code;
// later failures arrive as a final error event.
func (h *askHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ask == nil {
		notConfigured(w, "ask")
		return
	}
	ctx := r.Context()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	opts, err := askOptions(req)
	if err != nil {
		writeError(w, err)
		return
	}

	prepared, err := h.ask.Prepare(ctx, req.Question, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	updates, err := h.ask.Stream(ctx, prepared)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	send := func(ev StreamEvent) bool {
		if err := enc.Encode(ev); err != nil {
			logger.Debug("ask stream: client gone: %v", err)
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	if !send(StreamEvent{
		Type:      EventMeta,
		Sources:   prepared.Sources,
		NoSources: prepared.NoSources,
		Omitted:   prepared.Prompt.Omitted,
	}) {
		return
	}

	var text string
	for u := range updates {
		if u.Err != nil {
			_, code := errorCode(u.Err)
			send(StreamEvent{Type: EventError, Error: u.Err.Error(), Code: code})
			return
		}
		text = u.Text
		if u.Delta != "" && !send(StreamEvent{Type: EventDelta, Text: u.Delta}) {
			return
		}
	}

	send(StreamEvent{Type: EventDone, Answer: prepared.Finish(text, time.Now())})
}

func askOptions(req AskRequest) (domain.AskOptions, error) {
	opts := domain.AskOptions{
		Mode:         domain.AskMode(req.Mode),
		Source:       domain.SourceKind(req.Source),
		MaxDocuments: req.MaxFiles,
	}
	if opts.Source == "" {
		opts.Source = domain.SourceDropbox
	}
	if opts.Mode != "" && !opts.Mode.IsValid() {
		return opts, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, req.Mode)
	}
	if !opts.Source.IsValid() {
		return opts, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, req.Source)
	}
	return opts, nil
}

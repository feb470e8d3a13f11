package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

func collect(t *testing.T, events <-chan driven.StreamEvent) []driven.StreamEvent {
	t.Helper()
	var out []driven.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func sseChunk(text string) string {
	return fmt.Sprintf("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}]}}]}\n\n", text)
}

func TestStream_DeltasThenDone(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Open the "))
		fmt.Fprint(w, sseChunk("gradebook."))
	})

	events, err := svc.Stream(context.Background(), "how?", driven.GenerateOptions{})
	require.NoError(t, err)

	got := collect(t, events)
	require.Len(t, got, 3)
	assert.Equal(t, driven.StreamEvent{Type: driven.StreamDelta, Text: "Open the "}, got[0])
	assert.Equal(t, driven.StreamEvent{Type: driven.StreamDelta, Text: "gradebook."}, got[1])
	assert.Equal(t, driven.StreamDone, got[2].Type)
}

func TestStream_ConnectFailure(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.Stream(context.Background(), "how?", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestReadStream_ErrorChunk(t *testing.T) {
	body := sseChunk("partial") +
		"data: {\"error\":{\"code\":500,\"message\":\"internal\"}}\n\n" +
		sseChunk("never")

	events := make(chan driven.StreamEvent, 10)
	readStream(context.Background(), strings.NewReader(body), events)
	close(events)

	got := collect(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, "partial", got[0].Text)
	assert.Equal(t, driven.StreamError, got[1].Type)
	assert.ErrorIs(t, got[1].Err, domain.ErrUpstreamUnavailable)
}

func TestReadStream_MalformedChunk(t *testing.T) {
	events := make(chan driven.StreamEvent, 10)
	readStream(context.Background(), strings.NewReader("data: {not json\n\n"), events)
	close(events)

	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, driven.StreamError, got[0].Type)
}

func TestReadStream_IgnoresCommentsAndBlankData(t *testing.T) {
	body := ": keep-alive\n\nevent: message\ndata:\n\n" + sseChunk("x") + "data: [DONE]\n\n"

	events := make(chan driven.StreamEvent, 10)
	readStream(context.Background(), strings.NewReader(body), events)
	close(events)

	got := collect(t, events)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Text)
	assert.Equal(t, driven.StreamDone, got[1].Type)
}

func TestReadStream_CancelledStopsWithoutTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan driven.StreamEvent)
	done := make(chan struct{})
	go func() {
		readStream(ctx, strings.NewReader(sseChunk("a")), events)
		close(done)
	}()
	<-done
}

package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

const maxEventBytes = 1 << 20

// readStream converts server-sent events into stream events. It always
// finishes with exactly one done or error event unless ctx is cancelled.
func readStream(ctx context.Context, body io.Reader, events chan<- driven.StreamEvent) {
	send := func(ev driven.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventBytes)

	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(driven.StreamEvent{Type: driven.StreamError, Err: fmt.Errorf("decode stream chunk: %w", err)})
			return
		}

		text, err := chunk.text()
		if err != nil {
			send(driven.StreamEvent{Type: driven.StreamError, Err: err})
			return
		}
		if text != "" && !send(driven.StreamEvent{Type: driven.StreamDelta, Text: text}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		send(driven.StreamEvent{
			Type: driven.StreamError,
			Err:  &domain.UpstreamError{Service: serviceName, Message: "read stream", Err: err},
		})
		return
	}
	if ctx.Err() != nil {
		return
	}
	send(driven.StreamEvent{Type: driven.StreamDone})
}

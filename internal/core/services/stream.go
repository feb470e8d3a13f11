package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// relayAnswer turns completion stream events into answer updates. Every
// delta produces an update carrying the accumulated text. The last update
// has Complete or Err set and the channel is closed after it. On
// cancellation the final update is only delivered to a waiting receiver.
func relayAnswer(ctx context.Context, events <-chan driven.StreamEvent) <-chan domain.AnswerUpdate {
	out := make(chan domain.AnswerUpdate)

	go func() {
		defer close(out)

		var answer domain.StreamedAnswer
		aborted := func(cause error) {
			select {
			case out <- domain.AnswerUpdate{Text: answer.Text, Err: fmt.Errorf("%w: %w", domain.ErrStreamAborted, cause)}:
			default:
			}
		}
		send := func(u domain.AnswerUpdate) bool {
			if err := ctx.Err(); err != nil {
				aborted(err)
				return false
			}
			select {
			case out <- u:
				return true
			case <-ctx.Done():
				aborted(ctx.Err())
				return false
			}
		}

		for {
			// select picks randomly among ready cases; a cancelled
			// context must win over buffered deltas.
			if err := ctx.Err(); err != nil {
				aborted(err)
				return
			}

			select {
			case <-ctx.Done():
				aborted(ctx.Err())
				return

			case ev, ok := <-events:
				if !ok {
					send(domain.AnswerUpdate{
						Text: answer.Text,
						Err:  fmt.Errorf("%w: stream ended before completion", domain.ErrStreamAborted),
					})
					return
				}

				switch ev.Type {
				case driven.StreamDelta:
					if ev.Text == "" {
						continue
					}
					answer.Append(ev.Text)
					if !send(domain.AnswerUpdate{Text: answer.Text, Delta: ev.Text}) {
						return
					}

				case driven.StreamDone:
					answer.Complete = true
					send(domain.AnswerUpdate{Text: answer.Text, Complete: true})
					return

				case driven.StreamError:
					err := domain.ErrStreamAborted
					if ev.Err != nil {
						err = fmt.Errorf("%w: %w", domain.ErrStreamAborted, ev.Err)
					}
					send(domain.AnswerUpdate{Text: answer.Text, Err: err})
					return
				}
			}
		}
	}()

	return out
}

// CollectAnswer drains updates and returns the final answer text.
// It returns the error carried by the final update, if any.
func CollectAnswer(updates <-chan domain.AnswerUpdate) (string, error) {
	var last domain.AnswerUpdate
	for u := range updates {
		last = u
	}
	if last.Err != nil {
		return last.Text, last.Err
	}
	if !last.Complete {
		return last.Text, domain.ErrStreamAborted
	}
	return last.Text, nil
}

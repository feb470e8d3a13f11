package cli

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// errNotConfigured reports a port that was not wired at startup.
func errNotConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}

// withHint adds the command that fixes a known failure.
func withHint(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthExpired):
		return fmt.Errorf("%w\nRun 'coach connect' to link your Dropbox account", err)
	case errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%w\nRun 'coach settings llm' to configure Gemini", err)
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("%w\nWait a minute and try again", err)
	case errors.Is(err, domain.ErrBudgetExceeded):
		return fmt.Errorf("%w\nShorten the question or raise pipeline.max_context_chars", err)
	default:
		return err
	}
}

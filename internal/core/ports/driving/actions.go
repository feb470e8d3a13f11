package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// AnswerActionService provides actions on a finished answer.
// This is used by the TUI, CLI and HTTP adapters.
type AnswerActionService interface {
	// CopyAnswer copies the answer text to the system clipboard.
	CopyAnswer(ctx context.Context, answer *domain.Answer) error

	// SourceURL returns a web page for the source, or "" if it has none.
	SourceURL(source domain.SourceRef) string

	// OpenSource opens the source's web page in the default browser.
	OpenSource(ctx context.Context, source domain.SourceRef) error

	// Export renders the answer as a document and writes it to w.
	Export(answer *domain.Answer, w io.Writer) error

	// ExportExtension returns the file extension Export produces.
	ExportExtension() string
}

package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// AnswerExporter renders a completed answer to a document format.
type AnswerExporter interface {
	// Export writes the rendered answer to w.
	Export(answer domain.Answer, w io.Writer) error

	// Extension returns the file extension produced, with leading dot.
	Extension() string
}

// DirectoryWatcher reports files created or written in a directory.
type DirectoryWatcher interface {
	// Watch emits absolute file paths until ctx is cancelled.
	// Both channels are closed when watching stops.
	Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error)
}

package services

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure AnswerActionService implements the interface.
var _ driving.AnswerActionService = (*AnswerActionService)(nil)

// AnswerActionService copies, exports and opens the sources of answers.
type AnswerActionService struct {
	exporter driven.AnswerExporter
	resolve  func(locator string) string
	copy    func(text string) error
	open    func(url string) error
}

// NewAnswerActionService creates a new answer action service.
// The exporter and resolve parameters are optional (can be nil). resolve
// maps a source locator to a web URL.
func NewAnswerActionService(
	exporter driven.AnswerExporter,
	resolve func(locator string) string,
) *AnswerActionService {
	return &AnswerActionService{
		exporter: exporter,
		resolve:  resolve,
		copy:     clipboard.WriteAll,
		open:     openURL,
	}
}

// CopyAnswer copies the answer text to the system clipboard.
func (s *AnswerActionService) CopyAnswer(_ context.Context, answer *domain.Answer) error {
	if answer == nil || answer.Text == "" {
		return fmt.Errorf("%w: no answer to copy", domain.ErrInvalidInput)
	}
	if err := s.copy(answer.Text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// SourceURL returns a web page for the source, or "" if it has none.
// Library documents only exist locally and never have one.
func (s *AnswerActionService) SourceURL(source domain.SourceRef) string {
	if s.resolve == nil || source.Locator == "" {
		return ""
	}
	if _, ok := domain.ParseLibraryLocator(source.Locator); ok {
		return ""
	}
	return s.resolve(source.Locator)
}

// OpenSource opens the source's web page in the default browser.
func (s *AnswerActionService) OpenSource(_ context.Context, source domain.SourceRef) error {
	url := s.SourceURL(source)
	if url == "" {
		return fmt.Errorf("%w: %s has no web page", domain.ErrUnsupportedType, source.Name)
	}
	return s.open(url)
}

// Export renders the answer as a document and writes it to w.
func (s *AnswerActionService) Export(answer *domain.Answer, w io.Writer) error {
	if s.exporter == nil {
		return fmt.Errorf("%w: no exporter configured", domain.ErrUnsupportedType)
	}
	if answer == nil || answer.Text == "" {
		return fmt.Errorf("%w: no answer to export", domain.ErrInvalidInput)
	}
	if err := s.exporter.Export(*answer, w); err != nil {
		return fmt.Errorf("export answer: %w", err)
	}
	return nil
}

// ExportExtension returns the file extension Export produces.
func (s *AnswerActionService) ExportExtension() string {
	if s.exporter == nil {
		return ""
	}
	return s.exporter.Extension()
}

// openURL opens url with the platform's default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", url)
	case osLinux:
		cmd = exec.Command("xdg-open", url)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

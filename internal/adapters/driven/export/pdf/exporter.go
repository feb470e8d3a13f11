// Package pdf renders completed answers to PDF documents.
package pdf

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.AnswerExporter = (*Exporter)(nil)

const (
	lineHeight = 6.0
	bodySize   = 11.0
)

// Exporter writes an answer as an A4 PDF. The answer text is parsed as
// markdown; headings, lists, emphasis and code keep their structure.
type Exporter struct {
	md goldmark.Markdown
}

// NewExporter creates a PDF exporter.
func NewExporter() *Exporter {
	return &Exporter{
		md: goldmark.New(goldmark.WithExtensions(extension.Strikethrough, extension.Linkify)),
	}
}

// Extension returns ".pdf".
func (e *Exporter) Extension() string {
	return ".pdf"
}

// Export writes the rendered answer to w.
func (e *Exporter) Export(answer domain.Answer, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Canvas Coach", true)
	pdf.SetCreator("coach", false)
	if !answer.GeneratedAt.IsZero() {
		pdf.SetCreationDate(answer.GeneratedAt)
	}
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Canvas Coach")
	pdf.Ln(12)

	if answer.Question != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, lineHeight, tr(answer.Question), "", "L", false)
		pdf.Ln(2)
	}
	if !answer.GeneratedAt.IsZero() {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(110, 110, 110)
		pdf.Cell(0, 5, answer.GeneratedAt.Format("02-01-2006 15:04"))
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(9)
	}

	src := []byte(answer.Text)
	doc := e.md.Parser().Parse(text.NewReader(src))
	r := newRenderer(pdf, tr, src)
	if err := r.render(doc); err != nil {
		return fmt.Errorf("render answer: %w", err)
	}

	writeSources(pdf, tr, answer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func writeSources(pdf *gofpdf.Fpdf, tr func(string) string, answer domain.Answer) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Bronnen")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)

	if answer.NoSources || len(answer.Sources) == 0 {
		pdf.MultiCell(0, 5, "Geen relevante brondocumenten gevonden.", "", "L", false)
		return
	}

	for i, s := range answer.Sources {
		line := fmt.Sprintf("%d. %s", i+1, s.Name)
		if s.Score > 0 {
			line += fmt.Sprintf(" (score %d)", s.Score)
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
		if summary := strings.TrimSpace(s.Summary); summary != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 4.5, tr(summary), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
	}
}

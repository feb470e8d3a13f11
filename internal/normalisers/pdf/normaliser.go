// Package pdf extracts the text layer of PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// Normaliser handles PDF documents. Scanned PDFs without a text layer
// yield little or no text; no OCR is attempted.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns the plain text of every page, pages separated by a blank line.
// Pages that cannot be decoded are skipped; a document where every page
// fails is reported as corrupt.
func (n *Normaliser) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		// The text layer parser panics on some malformed streams.
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parser: %v", domain.ErrExtractionFailed, r)
		}
	}()

	if declared, verr := pageCount(data); verr != nil {
		logger.Debug("PDF structure check failed, trying text layer anyway: %v", verr)
	} else {
		logger.Debug("PDF declares %d pages", declared)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", domain.ErrExtractionFailed, err)
	}

	total := reader.NumPage()
	var (
		content strings.Builder
		decoded int
		lastErr error
	)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			lastErr = err
			logger.Debug("PDF page %d: %v", i, err)
			continue
		}
		decoded++

		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(pageText)
	}

	if decoded == 0 && lastErr != nil {
		return "", fmt.Errorf("%w: no readable page: %w", domain.ErrExtractionFailed, lastErr)
	}
	return content.String(), nil
}

// pageCount validates the document structure in relaxed mode.
func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

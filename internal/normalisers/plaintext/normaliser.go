// Package plaintext decodes text and markdown files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFF, 0xFE},
	{0xFE, 0xFF},
}

// Normaliser handles plain text documents. Markdown is kept verbatim so
// emphasis markup stays visible to the scorer.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// Extract decodes data to UTF-8 with normalised line endings.
// Files with a byte order mark are decoded as UTF-8 or UTF-16; other
// files are taken as UTF-8 if valid and as Windows-1252 otherwise.
func (n *Normaliser) Extract(_ context.Context, data []byte) (string, error) {
	text, err := decode(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode text: %w", domain.ErrExtractionFailed, err)
	}
	if strings.ContainsRune(text, 0) {
		return "", fmt.Errorf("%w: binary content", domain.ErrExtractionFailed)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}

func decode(data []byte) (string, error) {
	switch {
	case hasBOM(data):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case utf8.Valid(data):
		return string(data), nil
	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func hasBOM(data []byte) bool {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}

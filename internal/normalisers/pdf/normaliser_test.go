package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// createTestPDF renders one page per entry of pages.
func createTestPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(0, 10, text)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestExtract_Pages(t *testing.T) {
	data := createTestPDF(t, "Rubric instellen", "SpeedGrader openen")

	text, err := New().Extract(context.Background(), data)

	require.NoError(t, err)
	assert.Contains(t, text, "Rubric")
	assert.Contains(t, text, "SpeedGrader")
	assert.Less(t, bytes.Index([]byte(text), []byte("Rubric")), bytes.Index([]byte(text), []byte("SpeedGrader")))
}

func TestExtract_NotAPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("this is not a pdf"))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_Truncated(t *testing.T) {
	data := createTestPDF(t, "Quiz maken")

	_, err := New().Extract(context.Background(), data[:len(data)/3])

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestPageCount(t *testing.T) {
	data := createTestPDF(t, "een", "twee", "drie")

	n, err := pageCount(data)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coach/internal/core/domain"
)

func newTestActions() (*AnswerActionService, *[]string, *[]string) {
	var copied, opened []string
	s := NewAnswerActionService(&fakeExporter{}, func(locator string) string {
		return "https://example.test" + locator
	})
	s.copy = func(text string) error {
		copied = append(copied, text)
		return nil
	}
	s.open = func(url string) error {
		opened = append(opened, url)
		return nil
	}
	return s, &copied, &opened
}

func TestAnswerActionService_CopyAnswer(t *testing.T) {
	s, copied, _ := newTestActions()

	err := s.CopyAnswer(context.Background(), &domain.Answer{Text: "Ga naar Instellingen."})

	require.NoError(t, err)
	assert.Equal(t, []string{"Ga naar Instellingen."}, *copied)
}

func TestAnswerActionService_CopyAnswer_Empty(t *testing.T) {
	s, copied, _ := newTestActions()

	err := s.CopyAnswer(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	err = s.CopyAnswer(context.Background(), &domain.Answer{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, *copied)
}

func TestAnswerActionService_CopyAnswer_ClipboardError(t *testing.T) {
	s, _, _ := newTestActions()
	s.copy = func(string) error { return errors.New("no clipboard") }

	err := s.CopyAnswer(context.Background(), &domain.Answer{Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no clipboard")
}

func TestAnswerActionService_SourceURL(t *testing.T) {
	s, _, _ := newTestActions()

	assert.Equal(t, "https://example.test/docs/a.pdf", s.SourceURL(domain.SourceRef{Locator: "/docs/a.pdf"}))
	assert.Empty(t, s.SourceURL(domain.SourceRef{Locator: domain.LibraryLocator("id-1")}))
	assert.Empty(t, s.SourceURL(domain.SourceRef{}))

	bare := NewAnswerActionService(nil, nil)
	assert.Empty(t, bare.SourceURL(domain.SourceRef{Locator: "/docs/a.pdf"}))
}

func TestAnswerActionService_OpenSource(t *testing.T) {
	s, _, opened := newTestActions()

	require.NoError(t, s.OpenSource(context.Background(), domain.SourceRef{Locator: "/a.docx"}))
	assert.Equal(t, []string{"https://example.test/a.docx"}, *opened)

	err := s.OpenSource(context.Background(), domain.SourceRef{Name: "lokaal.pdf", Locator: domain.LibraryLocator("x")})
	require.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Len(t, *opened, 1)
}

type fakeExporter struct {
	err error
}

func (f *fakeExporter) Export(answer domain.Answer, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "EXPORT:"+answer.Text)
	return err
}

func (f *fakeExporter) Extension() string {
	return ".pdf"
}

func TestAnswerActionService_Export(t *testing.T) {
	s, _, _ := newTestActions()
	var buf bytes.Buffer

	require.NoError(t, s.Export(&domain.Answer{Text: "antwoord"}, &buf))
	assert.Equal(t, "EXPORT:antwoord", buf.String())
	assert.Equal(t, ".pdf", s.ExportExtension())
}

func TestAnswerActionService_Export_Errors(t *testing.T) {
	s, _, _ := newTestActions()
	var buf bytes.Buffer

	require.ErrorIs(t, s.Export(&domain.Answer{}, &buf), domain.ErrInvalidInput)

	s.exporter = &fakeExporter{err: errors.New("disk full")}
	err := s.Export(&domain.Answer{Text: "x"}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	bare := NewAnswerActionService(nil, nil)
	require.ErrorIs(t, bare.Export(&domain.Answer{Text: "x"}, &buf), domain.ErrUnsupportedType)
	assert.Empty(t, bare.ExportExtension())
}

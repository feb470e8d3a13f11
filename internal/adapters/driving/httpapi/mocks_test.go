package httpapi

import (
	"context"
	"io"

	"github.com/custodia-labs/coach/internal/core/domain"
)

type mockAskService struct {
	prepared   *domain.PreparedAnswer
	prepareErr error
	updates    []domain.AnswerUpdate
	streamErr  error

	lastQuestion string
	lastOpts     domain.AskOptions
}

func (m *mockAskService) Prepare(
	_ context.Context,
	question string,
	opts domain.AskOptions,
) (*domain.PreparedAnswer, error) {
	m.lastQuestion, m.lastOpts = question, opts
	if m.prepareErr != nil {
		return nil, m.prepareErr
	}
	if m.prepared == nil {
		return &domain.PreparedAnswer{Question: question}, nil
	}
	return m.prepared, nil
}

func (m *mockAskService) Stream(_ context.Context, _ *domain.PreparedAnswer) (<-chan domain.AnswerUpdate, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	ch := make(chan domain.AnswerUpdate, len(m.updates))
	for _, u := range m.updates {
		ch <- u
	}
	close(ch)
	return ch, nil
}

func (m *mockAskService) Ask(_ context.Context, _ string, _ domain.AskOptions) (*domain.Answer, error) {
	return nil, nil
}

type mockDocumentService struct {
	handles    []domain.DocumentHandle
	err        error
	lastSource domain.SourceKind
}

func (m *mockDocumentService) List(_ context.Context, source domain.SourceKind) ([]domain.DocumentHandle, error) {
	m.lastSource = source
	return m.handles, m.err
}

type mockConnectionService struct {
	authURL     string
	beginErr    error
	receivedErr error
	status      domain.ConnectionStatus

	redirectURI  string
	state, code  string
	deniedReason string
	disconnected bool
}

func (m *mockConnectionService) Begin(_ context.Context, redirectURI string) (string, string, error) {
	m.redirectURI = redirectURI
	return m.authURL, "state-1", m.beginErr
}

func (m *mockConnectionService) AuthorizationReceived(_ context.Context, state, code string) error {
	m.state, m.code = state, code
	return m.receivedErr
}

func (m *mockConnectionService) AuthorizationDenied(_ context.Context, reason string) error {
	m.deniedReason = reason
	return nil
}

func (m *mockConnectionService) ConnectWithToken(_ context.Context, _ string) error {
	return nil
}

func (m *mockConnectionService) Status(_ context.Context) domain.ConnectionStatus {
	return m.status
}

func (m *mockConnectionService) Disconnect(_ context.Context) error {
	m.disconnected = true
	return nil
}

type mockActionService struct {
	exported *domain.Answer
	err      error
}

func (m *mockActionService) CopyAnswer(_ context.Context, _ *domain.Answer) error {
	return nil
}

func (m *mockActionService) SourceURL(_ domain.SourceRef) string {
	return ""
}

func (m *mockActionService) OpenSource(_ context.Context, _ domain.SourceRef) error {
	return nil
}

func (m *mockActionService) Export(answer *domain.Answer, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	m.exported = answer
	_, err := io.WriteString(w, "%PDF-fake")
	return err
}

func (m *mockActionService) ExportExtension() string {
	return ".pdf"
}

package mcp

import (
	"context"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer   *domain.Answer
	prepared *domain.PreparedAnswer
	err      error

	lastQuestion string
	lastOpts     domain.AskOptions
}

func (m *mockAskService) Prepare(
	_ context.Context,
	question string,
	opts domain.AskOptions,
) (*domain.PreparedAnswer, error) {
	m.lastQuestion, m.lastOpts = question, opts
	return m.prepared, m.err
}

func (m *mockAskService) Stream(_ context.Context, _ *domain.PreparedAnswer) (<-chan domain.AnswerUpdate, error) {
	return nil, m.err
}

func (m *mockAskService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	m.lastQuestion, m.lastOpts = question, opts
	return m.answer, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	handles    []domain.DocumentHandle
	err        error
	lastSource domain.SourceKind
}

func (m *mockDocumentService) List(_ context.Context, source domain.SourceKind) ([]domain.DocumentHandle, error) {
	m.lastSource = source
	return m.handles, m.err
}

// mockConnectionService is a mock implementation of driving.ConnectionService.
type mockConnectionService struct {
	status domain.ConnectionStatus
}

func (m *mockConnectionService) Begin(_ context.Context, _ string) (string, string, error) {
	return "", "", nil
}

func (m *mockConnectionService) AuthorizationReceived(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockConnectionService) AuthorizationDenied(_ context.Context, _ string) error {
	return nil
}

func (m *mockConnectionService) ConnectWithToken(_ context.Context, _ string) error {
	return nil
}

func (m *mockConnectionService) Status(_ context.Context) domain.ConnectionStatus {
	return m.status
}

func (m *mockConnectionService) Disconnect(_ context.Context) error {
	return nil
}

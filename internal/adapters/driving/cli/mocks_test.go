package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
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
	if m.prepared != nil {
		return m.prepared, nil
	}
	return &domain.PreparedAnswer{Question: question, Mode: opts.Mode, NoSources: true}, nil
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

func (m *mockAskService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.Answer, error) {
	prepared, err := m.Prepare(ctx, question, opts)
	if err != nil {
		return nil, err
	}
	return prepared.Finish("", time.Time{}), nil
}

// mockConnectionService is a mock implementation of driving.ConnectionService.
type mockConnectionService struct {
	status       domain.ConnectionStatus
	token        string
	tokenErr     error
	disconnected bool
}

func (m *mockConnectionService) Begin(_ context.Context, _ string) (string, string, error) {
	return "https://www.dropbox.com/oauth2/authorize", "state-1", nil
}

func (m *mockConnectionService) AuthorizationReceived(_ context.Context, _, _ string) error {
	return nil
}

func (m *mockConnectionService) AuthorizationDenied(_ context.Context, _ string) error {
	return nil
}

func (m *mockConnectionService) ConnectWithToken(_ context.Context, token string) error {
	m.token = token
	if m.tokenErr != nil {
		return m.tokenErr
	}
	m.status = domain.ConnectionStatus{
		State:         domain.ConnectionState{Phase: domain.PhaseConnected, Account: "docent@example.nl"},
		HasCredential: true,
	}
	return nil
}

func (m *mockConnectionService) Status(_ context.Context) domain.ConnectionStatus {
	return m.status
}

func (m *mockConnectionService) Disconnect(_ context.Context) error {
	m.disconnected = true
	return nil
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

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	handles  []domain.DocumentHandle
	imported []string
	removed  []string
	failOn   string
}

func (m *mockLibraryService) Import(_ context.Context, path string) (*domain.LibraryFile, error) {
	if path == m.failOn {
		return nil, domain.ErrUnsupportedType
	}
	m.imported = append(m.imported, path)
	return &domain.LibraryFile{ID: "lib-1", Name: path}, nil
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.DocumentHandle, error) {
	return m.handles, nil
}

func (m *mockLibraryService) Remove(_ context.Context, id string) error {
	if id == m.failOn {
		return domain.ErrNotFound
	}
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockLibraryService) Watch(_ context.Context, _ string, _ func(domain.LibraryFile)) error {
	return nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	setErr      error
	validateErr error
	llmErr      error
	values      map[string]string
	provider    domain.LLMProvider
	model       string
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), values: map[string]string{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"pipeline.default_mode", "llm.api_key"}
}

func (m *mockSettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

// mockActionService is a mock implementation of driving.AnswerActionService.
type mockActionService struct {
	exportErr error
}

func (m *mockActionService) CopyAnswer(_ context.Context, _ *domain.Answer) error {
	return nil
}

func (m *mockActionService) SourceURL(src domain.SourceRef) string {
	if src.Locator == "" {
		return ""
	}
	return "https://www.dropbox.com/home" + src.Locator
}

func (m *mockActionService) OpenSource(_ context.Context, _ domain.SourceRef) error {
	return nil
}

func (m *mockActionService) Export(answer *domain.Answer, w io.Writer) error {
	if m.exportErr != nil {
		return m.exportErr
	}
	_, err := io.WriteString(w, "%PDF-fake "+answer.Question)
	return err
}

func (m *mockActionService) ExportExtension() string {
	return ".pdf"
}

// setupTestServices installs s for the duration of the test.
func setupTestServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// execute runs the root command with args and returns stdout and stderr.
// Flag variables are reset before and after each run since cobra keeps
// them between runs.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags() {
	askMode, askSource, askMaxFiles, askJSON, askExport = "", string(domain.SourceDropbox), 0, false, ""
	filesSource, filesJSON = string(domain.SourceDropbox), false
	libraryJSON = false
	connectToken, connectNoBrowser = false, false
	servePort = 0
}

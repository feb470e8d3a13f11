package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
)

// mockCompletion is a mock implementation of driven.CompletionService.
// respond picks the reply for each Generate call; events are replayed by Stream.
type mockCompletion struct {
	mu        sync.Mutex
	respond   func(prompt string, opts driven.GenerateOptions) (string, error)
	prompts   []string
	events    []driven.StreamEvent
	streamErr error
}

func (m *mockCompletion) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.respond == nil {
		return "", errors.New("no response configured")
	}
	return m.respond(prompt, opts)
}

func (m *mockCompletion) Stream(_ context.Context, prompt string, _ driven.GenerateOptions) (<-chan driven.StreamEvent, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	ch := make(chan driven.StreamEvent, len(m.events))
	for _, ev := range m.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (m *mockCompletion) ModelName() string            { return "mock-model" }
func (m *mockCompletion) Ping(_ context.Context) error { return nil }
func (m *mockCompletion) Close() error                 { return nil }

func (m *mockCompletion) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockCompletion) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// textExtractor returns the bytes as text, or fails for content starting with "CORRUPT".
type textExtractor struct {
	exts []string
}

func (e textExtractor) Extensions() []string { return e.exts }

func (e textExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if strings.HasPrefix(string(data), "CORRUPT") {
		return "", errors.New("corrupt file")
	}
	return string(data), nil
}

// mockExtractors is a mock implementation of driven.ExtractorRegistry.
type mockExtractors map[string]driven.TextExtractor

func newMockExtractors(exts ...string) mockExtractors {
	if len(exts) == 0 {
		exts = []string{".txt", ".md", ".pdf", ".docx"}
	}
	m := mockExtractors{}
	for _, ext := range exts {
		m[ext] = textExtractor{exts: []string{ext}}
	}
	return m
}

func (m mockExtractors) For(ext string) (driven.TextExtractor, bool) {
	e, ok := m[ext]
	return e, ok
}

// mockDocumentStore is a mock implementation of driven.DocumentStore.
type mockDocumentStore struct {
	mu        sync.Mutex
	files     []domain.DocumentHandle
	content   map[string]string
	errs      map[string]error
	listErr   error
	downloads []string
	lastCred  string
}

func (m *mockDocumentStore) add(name, text string) domain.DocumentHandle {
	if m.content == nil {
		m.content = make(map[string]string)
	}
	h := domain.DocumentHandle{
		ID:           "id:" + name,
		DisplayName:  name,
		LocatorPath:  "/" + strings.ToLower(name),
		SizeBytes:    int64(len(text)),
		Downloadable: true,
	}
	m.files = append(m.files, h)
	m.content[h.LocatorPath] = text
	return h
}

func (m *mockDocumentStore) ListFiles(_ context.Context, credential string) ([]domain.DocumentHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCred = credential
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.DocumentHandle(nil), m.files...), nil
}

func (m *mockDocumentStore) Download(_ context.Context, credential, locatorPath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCred = credential
	m.downloads = append(m.downloads, locatorPath)
	if err := m.errs[locatorPath]; err != nil {
		return nil, err
	}
	text, ok := m.content[locatorPath]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return []byte(text), nil
}

// mockCredentialProvider is a mock implementation of driven.CredentialProvider.
type mockCredentialProvider struct {
	token   string
	err     error
	cleared bool
}

func (m *mockCredentialProvider) Get(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.token == "" {
		return "", domain.ErrAuthRequired
	}
	return m.token, nil
}

func (m *mockCredentialProvider) Clear(_ context.Context) error {
	m.cleared = true
	m.token = ""
	return nil
}

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore map[string]string

func (m mockPromptStore) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m mockPromptStore) Reload() {}

// mockOAuthClient is a mock implementation of driven.OAuthClient.
type mockOAuthClient struct {
	tokens       *domain.OAuthCredentials
	err          error
	lastVerifier string
	lastCode     string
}

func (m *mockOAuthClient) AuthCodeURL(state, verifier, redirectURI string) string {
	m.lastVerifier = verifier
	return "https://auth.example/authorize?state=" + state + "&redirect_uri=" + redirectURI
}

func (m *mockOAuthClient) Exchange(_ context.Context, code, verifier, _ string) (*domain.OAuthCredentials, error) {
	m.lastCode = code
	if verifier != m.lastVerifier {
		return nil, errors.New("verifier mismatch")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens, nil
}

// mockAccountResolver is a mock implementation of driven.AccountResolver.
type mockAccountResolver struct {
	account string
	err     error
}

func (m *mockAccountResolver) AccountIdentifier(_ context.Context, _ string) (string, error) {
	return m.account, m.err
}

// mockWatcher is a mock implementation of driven.DirectoryWatcher.
type mockWatcher struct {
	paths []string
	errs  []error
	err   error
}

func (m *mockWatcher) Watch(_ context.Context, _ string) (<-chan string, <-chan error, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	paths := make(chan string, len(m.paths))
	errs := make(chan error, len(m.errs))
	for _, p := range m.paths {
		paths <- p
	}
	for _, e := range m.errs {
		errs <- e
	}
	close(paths)
	close(errs)
	return paths, errs, nil
}

// Package oauth runs the local redirect endpoint of the Dropbox
// authorisation flow and opens the consent page in a browser.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CallbackPath is the path registered as the redirect URI.
const CallbackPath = "/callback"

// Callback holds the query parameters of one redirect.
type Callback struct {
	Code  string
	State string

	// Error and ErrorDescription are set when the user refused access.
	Error            string
	ErrorDescription string
}

// Denied reports whether the provider returned an error instead of a code.
func (c Callback) Denied() bool {
	return c.Error != ""
}

// Reason returns a readable refusal reason.
func (c Callback) Reason() string {
	if c.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", c.Error, c.ErrorDescription)
	}
	return c.Error
}

// CallbackServer receives the authorisation redirect on localhost.
// State validation is left to the caller, which owns the pending flow.
type CallbackServer struct {
	mu        sync.Mutex
	port      int
	callbacks chan Callback
	errs      chan error
	server    *http.Server
	listener  net.Listener
}

// NewCallbackServer creates a callback server for port.
// If port is 0, a random available port is chosen on Start.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:      port,
		callbacks: make(chan Callback, 1),
		errs:      make(chan error, 1),
	}
}

// Start begins listening on 127.0.0.1.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+CallbackPath, s.handleCallback)

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	// Stop clears s.server, so the serving goroutine keeps its own copy.
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	s.server = srv

	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errs <- err:
			default:
			}
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cb := Callback{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	// Only the first redirect counts; reloads of the page are ignored.
	select {
	case s.callbacks <- cb:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case cb.Denied():
		_, _ = fmt.Fprint(w, resultPage("Koppeling geweigerd", cb.Reason()))
	case cb.Code == "":
		_, _ = fmt.Fprint(w, resultPage("Koppeling mislukt", "Er is geen autorisatiecode ontvangen."))
	default:
		_, _ = fmt.Fprint(w, resultPage("Dropbox gekoppeld", "Je kunt dit venster sluiten en terugkeren naar Canvas Coach."))
	}
}

// WaitForCallback blocks until a redirect arrives or ctx is done.
func (s *CallbackServer) WaitForCallback(ctx context.Context) (Callback, error) {
	select {
	case cb := <-s.callbacks:
		return cb, nil
	case err := <-s.errs:
		return Callback{}, fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		return Callback{}, fmt.Errorf("waiting for authorisation: %w", ctx.Err())
	}
}

// Stop shuts down the callback server. It is safe to call more than once.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	s.server = nil
	return err
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	return s.port
}

// RedirectURI returns the redirect URI to register with the provider.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}

//nolint:misspell // CSS properties use American spelling
func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="nl">
<head>
    <meta charset="utf-8">
    <title>Canvas Coach</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            margin: 0;
            background: #FAFAFA;
        }
        .container {
            text-align: center;
            background: white;
            padding: 48px 64px;
            border-radius: 16px;
            border: 1px solid #C7C8CC;
            box-shadow: 0 4px 24px rgba(0,0,0,0.08);
        }
        h1 {
            color: #333F50;
            margin: 0 0 8px 0;
            font-size: 24px;
            font-weight: 600;
        }
        p {
            color: #7B8088;
            margin: 0;
            font-size: 16px;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// FindAvailablePort finds an available port in the given range.
func FindAvailablePort(startPort, endPort int) (int, error) {
	for port := startPort; port <= endPort; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			_ = listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, endPort)
}

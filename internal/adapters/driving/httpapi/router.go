package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// Deps holds the driving ports the HTTP handlers use.
type Deps struct {
	// Ask is required.
	Ask driving.AskService

	// The remaining ports are optional; their routes answer 501 when nil.
	Documents  driving.DocumentService
	Connection driving.ConnectionService
	Actions    driving.AnswerActionService

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	ask := &askHandler{ask: deps.Ask}
	docs := &filesHandler{documents: deps.Documents}
	auth := &authHandler{connection: deps.Connection}
	export := &exportHandler{actions: deps.Actions}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", ask.ServeHTTP)
		r.Post("/export", export.ServeHTTP)
		r.Get("/files", docs.ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/start", auth.start)
			r.Get("/callback", auth.callback)
			r.Get("/status", auth.status)
			r.Delete("/", auth.disconnect)
		})
	})

	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	return r
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

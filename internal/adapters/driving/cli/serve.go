package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/coach/internal/adapters/driving/mcp"
	"github.com/custodia-labs/coach/internal/adapters/driving/oauth"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the coach HTTP API for web front ends.

Routes:
  POST   /api/ask            stream an answer as NDJSON
  POST   /api/export         render an answer as a document
  GET    /api/files          list candidate documents (?source=dropbox|library)
  GET    /api/auth/start     begin the Dropbox authorisation
  GET    /api/auth/callback  Dropbox redirect target
  GET    /api/auth/status    connection state
  DELETE /api/auth           disconnect Dropbox
  GET    /healthz            liveness check
  *      /mcp                MCP over streamable HTTP

Without --port the first free port from 8080 is used.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (0 = first free port from 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errNotConfigured("ask")
	}

	port := servePort
	if port == 0 {
		p, err := oauth.FindAvailablePort(8080, 8180)
		if err != nil {
			return err
		}
		port = p
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mcpServer, err := mcp.NewServer(&mcp.Ports{
		Ask:        askService,
		Documents:  documentService,
		Connection: connectionService,
	})
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(&httpapi.Deps{
		Ask:        askService,
		Documents:  documentService,
		Connection: connectionService,
		Actions:    actionService,
		MCP:        mcpServer.Handler(),
	})

	cmd.Printf("Serving on http://localhost:%d\n", port)
	return httpapi.Serve(ctx, fmt.Sprintf(":%d", port), router)
}

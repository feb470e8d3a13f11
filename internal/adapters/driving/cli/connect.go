package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/coach/internal/adapters/driving/oauth"
	"github.com/custodia-labs/coach/internal/core/domain"
)

// authorisationTimeout bounds how long connect waits for the browser.
const authorisationTimeout = 5 * time.Minute

var (
	connectToken     bool
	connectNoBrowser bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Link your Dropbox account",
	Long: `Starts the Dropbox authorisation flow.

A local callback server is started on oauth.redirect_port and the consent
page is opened in your browser. The redirect URI shown must be registered
for your Dropbox app.

With --token an access token generated in the Dropbox app console is
read from the terminal instead.`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored Dropbox credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if connectionService == nil {
			return errNotConfigured("connection")
		}
		if err := connectionService.Disconnect(cmd.Context()); err != nil {
			return fmt.Errorf("disconnect: %w", err)
		}
		cmd.Println("Dropbox disconnected.")
		return nil
	},
}

func init() {
	connectCmd.Flags().BoolVar(&connectToken, "token", false, "paste an access token instead of using the browser")
	connectCmd.Flags().BoolVar(&connectNoBrowser, "no-browser", false, "print the authorisation URL without opening it")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, _ []string) error {
	if connectionService == nil {
		return errNotConfigured("connection")
	}
	ctx := cmd.Context()

	if connectToken {
		cmd.Print("Dropbox access token: ")
		token := readPassword(cmd)
		cmd.Println()
		if err := connectionService.ConnectWithToken(ctx, token); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		printConnection(cmd, connectionService.Status(ctx))
		return nil
	}

	port := domain.DefaultAppSettings().OAuth.RedirectPort
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil && s.OAuth.RedirectPort > 0 {
			port = s.OAuth.RedirectPort
		}
	}

	server := oauth.NewCallbackServer(port)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	authURL, _, err := connectionService.Begin(ctx, server.RedirectURI())
	if err != nil {
		return withHint(fmt.Errorf("start authorisation: %w", err))
	}

	cmd.Printf("Redirect URI: %s\n", server.RedirectURI())
	cmd.Println("Open this URL to authorise Canvas Coach:")
	cmd.Printf("  %s\n\n", authURL)
	if !connectNoBrowser {
		if err := oauth.OpenBrowser(authURL); err != nil {
			cmd.PrintErrf("Could not open a browser: %v\n", err)
		}
	}
	cmd.Println("Waiting for authorisation...")

	waitCtx, cancel := context.WithTimeout(ctx, authorisationTimeout)
	defer cancel()
	cb, err := server.WaitForCallback(waitCtx)
	if err != nil {
		_ = connectionService.AuthorizationDenied(ctx, err.Error())
		return err
	}

	if cb.Denied() {
		_ = connectionService.AuthorizationDenied(ctx, cb.Reason())
		return fmt.Errorf("authorisation refused: %s", cb.Reason())
	}
	if err := connectionService.AuthorizationReceived(ctx, cb.State, cb.Code); err != nil {
		return fmt.Errorf("complete authorisation: %w", err)
	}

	printConnection(cmd, connectionService.Status(ctx))
	return nil
}

func printConnection(cmd *cobra.Command, status domain.ConnectionStatus) {
	cmd.Printf("Dropbox: %s\n", status.State.Phase.Description())
	if status.State.Account != "" {
		cmd.Printf("  Account: %s\n", status.State.Account)
	}
	if status.State.Reason != "" {
		cmd.Printf("  Reason: %s\n", status.State.Reason)
	}
	if status.HasCredential && status.State.Phase != domain.PhaseConnected {
		cmd.Println("  A stored credential is available.")
	}
}

// readPassword reads a secret without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(cmd.InOrStdin()))
}

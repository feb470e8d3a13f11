// Package cli implements the coach command line with cobra.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/core/ports/driving"
	"github.com/custodia-labs/coach/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Services holds the driving ports the commands use.
// Any field may be nil; commands that need it then report it as not configured.
type Services struct {
	Ask        driving.AskService
	Connection driving.ConnectionService
	Documents  driving.DocumentService
	Library    driving.LibraryService
	Settings   driving.SettingsService
	Actions    driving.AnswerActionService
}

var (
	askService        driving.AskService
	connectionService driving.ConnectionService
	documentService   driving.DocumentService
	libraryService    driving.LibraryService
	settingsService   driving.SettingsService
	actionService     driving.AnswerActionService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Answer Canvas questions from your own documents",
	Long: `Canvas Coach answers questions about Canvas LMS using the manuals and
how-to documents in your Dropbox or local library.

It finds the documents that matter for a question, packs them into a
single prompt for Gemini, and streams the answer back with its sources.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetServices configures the ports used by all commands.
func SetServices(s Services) {
	askService = s.Ask
	connectionService = s.Connection
	documentService = s.Documents
	libraryService = s.Library
	settingsService = s.Settings
	actionService = s.Actions
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and configuration status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if connectionService == nil {
		return errNotConfigured("connection")
	}
	ctx := cmd.Context()

	printConnection(cmd, connectionService.Status(ctx))

	if settingsService != nil {
		settings, err := settingsService.Get()
		if err == nil {
			cmd.Printf("LLM: %s, model %s", settings.LLM.Provider.Description(), settings.LLM.Model)
			if settings.LLM.IsConfigured() {
				cmd.Println()
			} else {
				cmd.Println(" (not configured)")
			}
			cmd.Printf("Default mode: %s\n", settings.Pipeline.DefaultMode)
		}
	}

	if libraryService != nil {
		docs, err := libraryService.List(ctx)
		if err == nil {
			cmd.Printf("Library: %d document(s)\n", len(docs))
		}
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/adapters/driving/tui"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for Canvas Coach.

Type a question and press enter. The answer streams in with the documents
it was based on listed below it.

Controls:
  Enter    - Ask
  Ctrl+T   - Switch heuristic / smart mode
  Tab      - Switch Dropbox / local library
  Ctrl+Y   - Copy the answer
  Ctrl+O   - Open the selected source
  Ctrl+E   - Export the answer
  Esc      - Cancel / Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if askService == nil {
		return errNotConfigured("ask")
	}

	app, err := tui.NewApp(&tui.Ports{
		Ask:        askService,
		Actions:    actionService,
		Documents:  documentService,
		Settings:   settingsService,
		Connection: connectionService,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}

package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/adapters/driving/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("coach version %s\n", version)
		cmd.Printf("  mcp server  %s\n", mcp.Version)
		cmd.Printf("  go          %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

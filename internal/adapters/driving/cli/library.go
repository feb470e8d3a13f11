package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/core/domain"
)

var libraryJSON bool

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the local document library",
	Long: `The local library holds documents imported from disk. Ask with
--source library to answer from these instead of Dropbox.`,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Import files into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLibraryAdd,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library documents",
	Args:  cobra.NoArgs,
	RunE:  runLibraryList,
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a document from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryRemove,
}

var libraryWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import documents as they appear in a folder",
	Long: `Watches a folder and imports every supported document written to it.
Files already in the folder are not imported. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runLibraryWatch,
}

func init() {
	libraryListCmd.Flags().BoolVar(&libraryJSON, "json", false, "output as JSON")
	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(libraryWatchCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibraryAdd(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errNotConfigured("library")
	}

	var failed int
	for _, path := range args {
		file, err := libraryService.Import(cmd.Context(), path)
		if err != nil {
			cmd.PrintErrf("  %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("Imported %s (%s)\n", file.Name, file.ID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be imported", failed, len(args))
	}
	return nil
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errNotConfigured("library")
	}

	handles, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list library: %w", err)
	}

	if libraryJSON {
		return writeJSON(cmd.OutOrStdout(), handles)
	}
	if len(handles) == 0 {
		cmd.Println("The library is empty. Add documents with 'coach library add'.")
		return nil
	}
	printHandles(cmd.OutOrStdout(), handles)
	return nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errNotConfigured("library")
	}

	if err := libraryService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove %s: %w", args[0], err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runLibraryWatch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errNotConfigured("library")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	err := libraryService.Watch(ctx, args[0], func(f domain.LibraryFile) {
		cmd.Printf("Imported %s (%s)\n", f.Name, f.ID)
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	return nil
}

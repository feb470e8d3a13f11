package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/core/domain"
)

var (
	filesSource string
	filesJSON   bool
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the documents questions are answered from",
	Long: `Lists the supported documents (PDF, Word, plain text) available from a
source, after the dropbox.name_filter keywords are applied.`,
	Args: cobra.NoArgs,
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().StringVarP(&filesSource, "source", "s", string(domain.SourceDropbox), "document source: dropbox or library")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	source := domain.SourceKind(strings.ToLower(filesSource))
	if !source.IsValid() {
		return fmt.Errorf("unknown source %q (use dropbox or library)", filesSource)
	}

	handles, err := documentService.List(cmd.Context(), source)
	if err != nil {
		return withHint(fmt.Errorf("list documents: %w", err))
	}

	if filesJSON {
		return writeJSON(cmd.OutOrStdout(), handles)
	}
	if len(handles) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	printHandles(cmd.OutOrStdout(), handles)
	return nil
}

func printHandles(w io.Writer, handles []domain.DocumentHandle) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tPATH")
	for _, h := range handles {
		modified := "-"
		if !h.ModifiedAt.IsZero() {
			modified = humanize.Time(h.ModifiedAt)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			h.DisplayName, humanize.Bytes(uint64(max(h.SizeBytes, 0))), modified, h.LocatorPath)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "\n%d document(s)\n", len(handles))
}

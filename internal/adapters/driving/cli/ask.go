package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/core/domain"
)

var (
	askMode     string
	askSource   string
	askMaxFiles int
	askJSON     bool
	askExport   string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about Canvas",
	Long: `Answers a question using your Canvas documents.

Documents are fetched from the chosen source, ranked, and packed into a
single prompt. The answer is streamed as it is generated and followed by
the list of documents it was based on.

Modes:
  heuristic - keyword scoring, one LLM call (default)
  smart     - the LLM judges each document first, irrelevant ones are dropped`,
	Example: `  coach ask "Hoe maak ik een rubric aan?"
  coach ask --mode smart --source library "How do I set up peer review?"
  coach ask --export ~/Documents "Hoe wijzig ik de weging van een opdrachtgroep?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "ranking mode: heuristic or smart (default from settings)")
	askCmd.Flags().StringVarP(&askSource, "source", "s", string(domain.SourceDropbox), "document source: dropbox or library")
	askCmd.Flags().IntVarP(&askMaxFiles, "max-files", "n", 0, "maximum number of documents to fetch (0 = settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the finished answer as JSON")
	askCmd.Flags().StringVarP(&askExport, "export", "e", "", "also write the answer to this file or directory")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errNotConfigured("ask")
	}

	opts, err := askOptions()
	if err != nil {
		return err
	}
	question := strings.Join(args, " ")
	ctx := cmd.Context()

	prepared, err := askService.Prepare(ctx, question, opts)
	if err != nil {
		return withHint(fmt.Errorf("prepare answer: %w", err))
	}

	updates, err := askService.Stream(ctx, prepared)
	if err != nil {
		return withHint(fmt.Errorf("start answer: %w", err))
	}

	out := cmd.OutOrStdout()
	live := out
	if askJSON {
		live = io.Discard
	}

	var text string
	for u := range updates {
		if u.Err != nil {
			if text != "" {
				_, _ = fmt.Fprintln(live)
			}
			return withHint(fmt.Errorf("answer interrupted: %w", u.Err))
		}
		_, _ = io.WriteString(live, u.Delta)
		text = u.Text
	}

	answer := prepared.Finish(text, time.Now())

	if askJSON {
		if err := writeJSON(out, answer); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(out)
		printSources(out, answer)
	}

	if askExport != "" {
		path, err := exportAnswer(answer, askExport)
		if err != nil {
			return err
		}
		cmd.PrintErrf("Answer exported to %s\n", path)
	}
	return nil
}

func askOptions() (domain.AskOptions, error) {
	opts := domain.AskOptions{
		Mode:         domain.AskMode(strings.ToLower(askMode)),
		Source:       domain.SourceKind(strings.ToLower(askSource)),
		MaxDocuments: askMaxFiles,
	}
	if opts.Mode != "" && !opts.Mode.IsValid() {
		return opts, fmt.Errorf("unknown mode %q (use heuristic or smart)", askMode)
	}
	if !opts.Source.IsValid() {
		return opts, fmt.Errorf("unknown source %q (use dropbox or library)", askSource)
	}
	return opts, nil
}

func printSources(w io.Writer, answer *domain.Answer) {
	_, _ = fmt.Fprintln(w)
	if answer.NoSources {
		_, _ = fmt.Fprintln(w, "No relevant source documents were found; the answer is based on general knowledge.")
		return
	}

	_, _ = fmt.Fprintln(w, "Sources:")
	for i, src := range answer.Sources {
		_, _ = fmt.Fprintf(w, "  [%d] %s", i+1, src.Name)
		if src.Confidence > 0 {
			_, _ = fmt.Fprintf(w, " (score %d, confidence %d%%)", src.Score, src.Confidence)
		}
		_, _ = fmt.Fprintln(w)
		if actionService != nil {
			if url := actionService.SourceURL(src); url != "" {
				_, _ = fmt.Fprintf(w, "      %s\n", url)
			}
		}
	}
}

// exportAnswer writes the answer to target. A directory target gets a
// timestamped file name.
func exportAnswer(answer *domain.Answer, target string) (string, error) {
	if actionService == nil {
		return "", errNotConfigured("export")
	}

	path := target
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		name := fmt.Sprintf("coach-%s%s", answer.GeneratedAt.Format("20060102-150405"), actionService.ExportExtension())
		path = filepath.Join(target, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := actionService.Export(answer, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

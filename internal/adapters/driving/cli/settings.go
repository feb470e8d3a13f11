package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/coach/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change pipeline, scoring, LLM and Dropbox settings.

Settings are stored in config.toml in the coach home directory
(~/.coach, or $COACH_HOME). Environment variables such as GEMINI_API_KEY
override stored values without being saved.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Changes one setting by its dotted key, for example:

  coach settings set scoring.term_weight 12
  coach settings set dropbox.name_filter "canvas, handleiding"
  coach settings set pipeline.default_mode smart

Run 'coach settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errNotConfigured("settings")
		}
		for _, k := range settingsService.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the Gemini provider",
	Long:  `Interactively choose the Gemini API or Vertex AI and validate the configuration.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Default mode: %s\n", s.Pipeline.DefaultMode)
	cmd.Printf("  Context budget: %d characters\n", s.Pipeline.MaxContextChars)
	cmd.Printf("  Max files: %d\n", s.Pipeline.MaxFiles)
	cmd.Printf("  Fetch concurrency: %d\n", s.Pipeline.FetchConcurrency)
	cmd.Printf("  Judge concurrency: %d\n", s.Pipeline.JudgeConcurrency)
	cmd.Printf("  Judge text limit: %d characters\n", s.Pipeline.JudgeTextLimit)
	cmd.Println()

	cmd.Println("[Scoring]")
	cmd.Printf("  Term weight: %d\n", s.Scoring.TermWeight)
	cmd.Printf("  Emphasis bonus: %d\n", s.Scoring.EmphasisBonus)
	cmd.Printf("  Instruction bonus: %d\n", s.Scoring.InstructionBonus)
	cmd.Printf("  Priority thresholds: high > %d, medium > %d\n", s.Scoring.PriorityHigh, s.Scoring.PriorityMedium)
	cmd.Printf("  Relevance floor: %d\n", s.Ranking.RelevanceFloor)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", s.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", s.LLM.Model)
	switch s.LLM.Provider {
	case domain.LLMProviderGemini:
		cmd.Printf("  API Key: %s\n", maskSecret(s.LLM.APIKey))
		if s.LLM.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", s.LLM.BaseURL)
		}
	case domain.LLMProviderVertex:
		cmd.Printf("  Project: %s\n", orNotSet(s.LLM.Project))
		cmd.Printf("  Location: %s\n", orNotSet(s.LLM.Location))
	}
	cmd.Printf("  Status: %s\n", configuredLabel(s.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Dropbox]")
	cmd.Printf("  App key: %s\n", orNotSet(s.Dropbox.AppKey))
	cmd.Printf("  App secret: %s\n", maskSecret(s.Dropbox.AppSecret))
	cmd.Printf("  Root: %s\n", orDefault(s.Dropbox.Root, "(whole account)"))
	cmd.Printf("  Name filter: %s\n", orDefault(strings.Join(s.Dropbox.NameFilter, ", "), "(none)"))
	cmd.Printf("  Redirect port: %d\n", s.OAuth.RedirectPort)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'coach settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if isSecretKey(key) {
		shown = maskSecret(value)
	}
	cmd.Printf("%s = %s\n", key, shown)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	providers := []domain.LLMProvider{domain.LLMProviderGemini, domain.LLMProviderVertex}

	cmd.Println("Select LLM Provider")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := settingsService.GetDefaults().LLM.Model
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := orDefault(readLine(reader), defaultModel)

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readLine(reader)
		if apiKey == "" {
			return fmt.Errorf("API key is required for %s", provider)
		}
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if provider == domain.LLMProviderVertex {
		cmd.Print("Enter Google Cloud project: ")
		if err := settingsService.Set("llm.project", readLine(reader)); err != nil {
			return err
		}
		defaultLocation := settingsService.GetDefaults().LLM.Location
		cmd.Printf("Enter location [%s]: ", defaultLocation)
		if err := settingsService.Set("llm.location", orDefault(readLine(reader), defaultLocation)); err != nil {
			return err
		}
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func isSecretKey(key string) bool {
	return key == "llm.api_key" || key == "dropbox.app_secret"
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orNotSet(v string) string {
	return orDefault(v, "(not set)")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

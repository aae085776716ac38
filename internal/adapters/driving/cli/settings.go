package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/comply/internal/core/domain"
)

var settingsValidate bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, scoring, the chat corpus and other options.

Settings are stored in ~/.comply/config.toml. Empty API keys fall back to
the OPENAI_API_KEY and ANTHROPIC_API_KEY environment variables, which may
also be set in a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration key",
	Long: `Sets a single configuration key, for example:

  comply settings set embedding.provider ollama
  comply settings set scoring.advice_concurrency 8
  comply settings set frameworks.tcfd.status_policy similarity

API keys are prompted for without echo when the value is omitted.
Run 'comply settings keys' for the full list.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsValidate, "validate", false, "ping the configured providers")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	// LLM settings
	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[Scoring]")
	cmd.Printf("  Max words per chunk: %d\n", settings.Scoring.MaxWords)
	if settings.Scoring.Workers > 0 {
		cmd.Printf("  Workers: %d\n", settings.Scoring.Workers)
	} else {
		cmd.Printf("  Workers: auto\n")
	}
	cmd.Printf("  Advice concurrency: %d\n", settings.Scoring.AdviceConcurrency)
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max attempts: %d\n", settings.Retry.MaxAttempts)
	cmd.Printf("  Base delay: %s\n", settings.Retry.BaseDelay)
	cmd.Printf("  Rate: %.1f req/s (burst %d)\n", settings.Retry.RequestsPerSecond, settings.Retry.Burst)
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Path: %s\n", orDefault(settings.Corpus.Path, "~/.comply/data"))
	cmd.Printf("  Top K: %d\n", settings.Corpus.TopK)
	cmd.Printf("  Chunk size: %d\n", settings.Corpus.ChunkSize)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Println("[Checklists]")
	cmd.Printf("  Directory: %s\n", orDefault(settings.ChecklistDir, "~/.comply/checklists"))
	if len(settings.Policies) > 0 {
		names := make([]string, 0, len(settings.Policies))
		for name := range settings.Policies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %s policy: %s\n", name, settings.Policies[name])
		}
	}
	cmd.Println()

	if !settingsValidate {
		return nil
	}

	// Validation
	cmd.Print("Validating embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}
	cmd.Print("Validating LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
	} else {
		cmd.Println("OK")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(baseURL, "(default)"))
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, retrieval, storage and other options.

Every key can also be set through the environment, e.g. DOCQA_LLM_MODEL for
llm.model. GEMINI_API_KEY, AUTHORIZATION_TOKEN, DATABASE_URL and REDIS_URL
are honoured as well.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Set a single setting by key, e.g.

  docqa settings set llm.model gemini-2.5-pro
  docqa settings set retrieval.timeout 90s

Secrets (api keys, auth token) are prompted for without echo when the value
is omitted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	RunE:  runSettingsKeys,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check connectivity to the configured AI providers",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
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

	cmd.Println(heading(cmd, "Current Settings"))
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.VisionModel != "" {
		cmd.Printf("  Vision Model: %s\n", settings.LLM.VisionModel)
	}
	if settings.LLM.TitleModel != "" {
		cmd.Printf("  Title Model: %s\n", settings.LLM.TitleModel)
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskOrUnset(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Max Tokens: %d\n", settings.Chunking.MaxTokens)
	cmd.Printf("  Overlap Tokens: %d\n", settings.Chunking.OverlapTokens)
	cmd.Printf("  Encoding: %s\n", settings.Chunking.Encoding)
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  Workers: %d\n", settings.Indexing.Workers)
	cmd.Printf("  Titles: %s\n", yesNo(settings.Indexing.Titles))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Concurrency: %d\n", settings.Retrieval.Concurrency)
	cmd.Printf("  Timeout: %s\n", settings.Retrieval.Timeout)
	cmd.Println()

	cmd.Println("[Resilience]")
	cmd.Printf("  Max Attempts: %d\n", settings.Resilience.MaxAttempts)
	cmd.Printf("  Base Delay: %s\n", settings.Resilience.BaseDelay)
	cmd.Printf("  Call Timeout: %s\n", settings.Resilience.CallTimeout)
	cmd.Printf("  Breaker: %d failures, %s cooldown\n",
		settings.Resilience.BreakerThreshold, settings.Resilience.BreakerCooldown)
	cmd.Printf("  Rate: %.1f/s, burst %d\n", settings.Resilience.RequestsPerSec, settings.Resilience.Burst)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Printf("  Data Dir: %s\n", settings.Storage.DataDir)
	if settings.Storage.Backend == domain.StoragePGVector {
		cmd.Printf("  DSN: %s\n", maskOrUnset(settings.Storage.DSN))
	}
	cmd.Println()

	cmd.Println("[Dedup]")
	if settings.Dedup.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Dedup.Path)
	}
	if settings.Dedup.RedisURL != "" {
		cmd.Printf("  Redis: %s\n", maskAPIKey(settings.Dedup.RedisURL))
	} else {
		cmd.Printf("  Redis: (not set, claims are per process)\n")
	}
	cmd.Printf("  Claim TTL: %s\n", settings.Dedup.ClaimTTL)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Addr: %s\n", settings.Server.Addr)
	cmd.Printf("  Auth Token: %s\n", maskOrUnset(settings.Server.AuthToken))
	cmd.Println()

	if !settings.Embedding.IsConfigured() {
		cmd.Println("Warning: embedding provider is not configured.")
		cmd.Println("Set GEMINI_API_KEY or run 'docqa settings set embedding.api_key'.")
	} else {
		cmd.Println("Run 'docqa settings validate' to check provider connectivity.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		cmd.Printf("Enter %s: ", key)
		if isSecretKey(key) {
			value = readPassword()
			cmd.Println()
		} else {
			value = readLine(bufio.NewReader(cmd.InOrStdin()))
		}
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if isSecretKey(key) {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	keys := settingsService.Keys()
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, settingsService.EnvVar(key)})
	}
	cmd.Println(renderTable(cmd, []string{"KEY", "ENVIRONMENT"}, rows))
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var failed bool

	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("%s: %v\n", failure(cmd, "FAILED"), err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("%s: %v\n", failure(cmd, "FAILED"), err)
		failed = true
	} else {
		cmd.Println("OK")
	}

	if failed {
		return errors.New("configuration validation failed")
	}
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "auth_token") || key == "storage.dsn"
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func maskOrUnset(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return maskAPIKey(secret)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
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

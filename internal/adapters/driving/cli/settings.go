package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change AI providers, retrieval, storage and other options.

Settings live in config.toml in the data directory. Environment variables
fill in API keys and hosts that the file leaves empty.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a single setting",
	Long: `Change a single setting using its dot-notation key.

Example:
  weldsafe settings set retrieval.top_k 5
  weldsafe settings set llm.provider anthropic

Run 'weldsafe settings keys' to list the recognised keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	svc := rt.Settings()
	if svc == nil {
		return errors.New("settings service not configured")
	}

	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Data directory: %s\n", svc.DataDir())
	cmd.Println()

	cmd.Println("Embedding:")
	cmd.Printf("  Provider: %s\n", s.Embedding.Provider)
	cmd.Printf("  Model: %s\n", s.Embedding.Model)
	if s.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.Embedding.BaseURL)
	}
	if s.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", status(s.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("LLM:")
	cmd.Printf("  Provider: %s\n", s.LLM.Provider)
	cmd.Printf("  Model: %s\n", s.LLM.Model)
	if s.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", s.LLM.BaseURL)
	}
	if s.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskAPIKey(s.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", status(s.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("Chunking:")
	cmd.Printf("  Max tokens: %d\n", s.Chunking.MaxTokens)
	cmd.Printf("  Overlap: %d\n", s.Chunking.Overlap)
	cmd.Println()

	cmd.Println("Retrieval:")
	cmd.Printf("  Top K: %d\n", s.Retrieval.TopK)
	cmd.Printf("  Max distance: %g\n", s.Retrieval.MaxDistance)
	cmd.Printf("  Block threshold: %d\n", s.Answer.BlockThreshold)
	cmd.Println()

	cmd.Println("AI runtime:")
	cmd.Printf("  Timeout: %s\n", s.AI.Timeout())
	cmd.Printf("  Max retries: %d\n", s.AI.MaxRetries)
	cmd.Printf("  Requests per second: %g\n", s.AI.RequestsPerSecond)
	cmd.Println()

	cmd.Println("Storage:")
	cmd.Printf("  Index: %s\n", s.Index.Dir)
	cmd.Printf("  Driver: %s\n", s.Storage.Driver)
	cmd.Printf("  DSN: %s\n", maskDSN(s.Storage.DSN))
	cmd.Printf("  Log file: %s\n", orNone(s.Log.File))
	cmd.Println()

	cmd.Println("Gateway:")
	cmd.Printf("  Address: %s\n", s.Server.Addr)
	cmd.Printf("  Support URL: %s\n", s.Bot.SupportURL)
	cmd.Printf("  Voice model: %s\n", s.Transcription.Model)
	if s.Tracing.Enabled {
		cmd.Printf("  Tracing: %s\n", s.Tracing.Endpoint)
	} else {
		cmd.Println("  Tracing: disabled")
	}

	if err := s.Validate(); err != nil {
		cmd.Println()
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	svc := rt.Settings()
	if svc == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, "api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s set to %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	rt, err := runtimeApp()
	if err != nil {
		return err
	}
	svc := rt.Settings()
	if svc == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func status(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// maskDSN hides the password of a connection URL.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return orNone(dsn)
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

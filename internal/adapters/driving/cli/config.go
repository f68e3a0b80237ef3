package cli

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/phishguard-labs/phishguard-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the phishguard configuration.

Settings are read from ` + configfile.ConfigFileName + ` in the configuration
directory; PHISHGUARD_* environment variables override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the LLM API key",
	Long:  `Prompts for the LLM API key without echo and writes it to the configuration file.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	cmd.Printf("Configuration directory: %s\n", dir)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", cfg.LLM.Provider)
	cmd.Printf("  Model: %s\n", cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.LLM.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Temperature: %g\n", cfg.LLM.Temperature)
	if cfg.LLM.MaxTokens > 0 {
		cmd.Printf("  Max tokens: %d\n", cfg.LLM.MaxTokens)
	}
	cmd.Printf("  Timeout: %ds\n", cfg.LLM.TimeoutSeconds)
	if cfg.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d requests/minute\n", cfg.LLM.RequestsPerMinute)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", cfg.Embedding.Provider)
	cmd.Printf("  Model: %s\n", cfg.Embedding.Model)
	if cfg.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.Embedding.BaseURL)
	}
	if cfg.Embedding.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.Embedding.APIKey))
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Path: %s\n", cfg.Index.Path)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", cfg.Retrieval.TopK)
	cmd.Println()

	if cfg.Corpus.Path != "" {
		cmd.Println("[Corpus]")
		cmd.Printf("  Path: %s\n", cfg.Corpus.Path)
		cmd.Println()
	}

	if err := cfg.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'phishguard config set-key' to store your API key.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key must not be empty")
	}

	if err := configfile.SetLLMAPIKey(dir, apiKey); err != nil {
		return err
	}
	cmd.Println("API key saved.")
	return nil
}

// Helper functions.

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

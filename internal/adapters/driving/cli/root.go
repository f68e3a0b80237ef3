// Package cli implements the phishguard command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishguard-labs/phishguard-cli/internal/adapters/driven/ai"
	configfile "github.com/phishguard-labs/phishguard-cli/internal/adapters/driven/config/file"
	"github.com/phishguard-labs/phishguard-cli/internal/adapters/driven/index/sqlite"
	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driven"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driving"
	"github.com/phishguard-labs/phishguard-cli/internal/core/services"
	"github.com/phishguard-labs/phishguard-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verboseFlag bool
	configDir   string
)

// Services injected into commands. Left nil in production and built
// lazily from configuration; tests replace them with mocks.
var (
	analysisService driving.AnalysisService
	indexService    driving.IndexService
)

var rootCmd = &cobra.Command{
	Use:   "phishguard",
	Short: "Policy-grounded phishing email analysis",
	Long: `PhishGuard classifies emails as safe or phishing by retrieving the
security policies most relevant to each message and asking an LLM for a
verdict grounded in those policies.

Run 'phishguard build-index' once to embed the policy corpus, then
'phishguard analyze' to classify emails.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose diagnostics on stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.phishguard)")
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := remediation(err); hint != "" {
			fmt.Fprintf(os.Stderr, "%s\n", hint)
		}
		return 1
	}
	return 0
}

// remediation returns a one-line hint for known failure classes.
func remediation(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return "Run 'phishguard build-index' to build the policy index."
	case errors.Is(err, domain.ErrModelMismatch):
		return "The index was built with a different embedding model. Run 'phishguard build-index' to rebuild it."
	case errors.Is(err, domain.ErrIndexCorrupt):
		return "The policy index is damaged. Run 'phishguard build-index' to rebuild it."
	case errors.Is(err, domain.ErrLLMAuth):
		return "Check your API key with 'phishguard config show', or set it with 'phishguard config set-key'."
	case errors.Is(err, domain.ErrLLMTimeout):
		return "The LLM did not respond in time. Retry, or raise llm.timeout_seconds in the configuration."
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "The LLM provider is unreachable. Check your network and provider status, then retry."
	case errors.Is(err, domain.ErrConfig):
		return "Review your configuration with 'phishguard config show'."
	}
	return ""
}

// resolveConfigDir returns the configuration directory, preferring the
// --config flag over the default.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return configfile.DefaultConfigDir()
}

func loadConfig() (*configfile.Config, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := configfile.Load(dir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// analysisCloser releases the adapters backing a wired analysis service.
type analysisCloser struct {
	index    driven.PolicyIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

func (c *analysisCloser) Close() {
	if c.llm != nil {
		_ = c.llm.Close()
	}
	if c.embedder != nil {
		_ = c.embedder.Close()
	}
	if c.index != nil {
		_ = c.index.Close()
	}
}

// newAnalysisService wires the full analysis pipeline from configuration.
// The returned closer must be called when the service is no longer needed.
func newAnalysisService(cfg *configfile.Config) (driving.AnalysisService, *analysisCloser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	index, err := sqlite.Open(cfg.Index.Path)
	if err != nil {
		return nil, nil, err
	}
	closer := &analysisCloser{index: index}

	embedder, err := ai.CreateAndValidateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	closer.embedder = embedder

	llm, err := ai.CreateAndValidateLLMService(cfg.LLMSettings())
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	closer.llm = llm

	dir, err := resolveConfigDir()
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	prompts, err := configfile.NewPromptStore(dir)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	composer := services.NewComposer(prompts)

	svc := services.NewAnalysisService(index, embedder, llm, composer, services.AnalysisOptions{
		DefaultTopK: cfg.Retrieval.TopK,
		LLMTimeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Generate: driven.GenerateOptions{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
	})
	return svc, closer, nil
}

// newIndexService wires the index build pipeline from configuration.
// Only the embedding section is validated; a build never talks to the
// LLM, so a missing LLM credential must not block it.
func newIndexService(cfg *configfile.Config) (driving.IndexService, *analysisCloser, error) {
	if err := cfg.ValidateEmbedding(); err != nil {
		return nil, nil, err
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		return nil, nil, err
	}
	closer := &analysisCloser{embedder: embedder}

	index, err := sqlite.Create(cfg.Index.Path)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	closer.index = index

	return services.NewIndexService(index, embedder), closer, nil
}

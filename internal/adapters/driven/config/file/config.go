// Package file provides file-based configuration for PhishGuard:
// a TOML config file with environment-variable overrides, and a
// user-editable prompt store with embedded defaults.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
)

// ConfigFileName is the config file inside the PhishGuard directory.
const ConfigFileName = "config.toml"

// placeholderAPIKey is the scaffold value written by setup guides.
// Treated the same as a missing key so the failure happens at startup
// with a clear message, not on the first LLM call.
const placeholderAPIKey = "your_api_key_here"

// Config is the full application configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Corpus    CorpusConfig    `toml:"corpus"`
}

// LLMConfig configures the classification model.
type LLMConfig struct {
	Provider          string  `toml:"provider"`
	Model             string  `toml:"model"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Temperature       float64 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
}

// EmbeddingConfig configures the embedding model.
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
}

// IndexConfig configures index storage.
type IndexConfig struct {
	Path string `toml:"path"`
}

// RetrievalConfig configures similarity retrieval.
type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

// CorpusConfig configures the policy corpus source.
type CorpusConfig struct {
	// Path is an optional policy file (one policy per line). Empty
	// means the embedded default corpus.
	Path string `toml:"path"`
}

// DefaultConfigDir returns ~/.phishguard.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".phishguard"), nil
}

// defaults returns the configuration used before file and environment
// overlays. Groq with temperature 0 mirrors the deterministic-leaning
// classification setup; Ollama supplies local embeddings.
func defaults(configDir string) Config {
	return Config{
		LLM: LLMConfig{
			Provider:       domain.AIProviderGroq.String(),
			Model:          "llama-3.3-70b-versatile",
			Temperature:    0,
			MaxTokens:      1024,
			TimeoutSeconds: 60,
		},
		Embedding: EmbeddingConfig{
			Provider: domain.AIProviderOllama.String(),
			Model:    "nomic-embed-text",
		},
		Index: IndexConfig{
			Path: filepath.Join(configDir, "index.db"),
		},
		Retrieval: RetrievalConfig{
			TopK: domain.DefaultTopK,
		},
	}
}

// Load builds the configuration: embedded defaults, overlaid by the
// TOML file when present, overlaid by PHISHGUARD_* environment
// variables. Environment wins.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		configDir = dir
	}

	cfg := defaults(configDir)

	data, err := os.ReadFile(filepath.Join(configDir, ConfigFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file; defaults plus environment apply.
	case err != nil:
		return nil, fmt.Errorf("%w: reading config file: %v", domain.ErrConfig, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing config file: %v", domain.ErrConfig, err)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

// applyEnv overlays PHISHGUARD_* environment variables.
func applyEnv(cfg *Config) {
	envString(&cfg.LLM.Provider, "PHISHGUARD_LLM_PROVIDER")
	envString(&cfg.LLM.Model, "PHISHGUARD_LLM_MODEL")
	envString(&cfg.LLM.BaseURL, "PHISHGUARD_LLM_BASE_URL")
	envString(&cfg.LLM.APIKey, "PHISHGUARD_LLM_API_KEY")
	envString(&cfg.LLM.APIKey, "GROQ_API_KEY")
	envFloat(&cfg.LLM.Temperature, "PHISHGUARD_LLM_TEMPERATURE")
	envInt(&cfg.LLM.MaxTokens, "PHISHGUARD_LLM_MAX_TOKENS")
	envInt(&cfg.LLM.TimeoutSeconds, "PHISHGUARD_LLM_TIMEOUT_SECONDS")
	envInt(&cfg.LLM.RequestsPerMinute, "PHISHGUARD_LLM_REQUESTS_PER_MINUTE")

	envString(&cfg.Embedding.Provider, "PHISHGUARD_EMBEDDING_PROVIDER")
	envString(&cfg.Embedding.Model, "PHISHGUARD_EMBEDDING_MODEL")
	envString(&cfg.Embedding.BaseURL, "PHISHGUARD_EMBEDDING_BASE_URL")
	envString(&cfg.Embedding.APIKey, "PHISHGUARD_EMBEDDING_API_KEY")
	envInt(&cfg.Embedding.Dimensions, "PHISHGUARD_EMBEDDING_DIMENSIONS")

	envString(&cfg.Index.Path, "PHISHGUARD_INDEX_PATH")
	envInt(&cfg.Retrieval.TopK, "PHISHGUARD_TOP_K")
	envString(&cfg.Corpus.Path, "PHISHGUARD_POLICIES_PATH")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// Validate checks the configuration at startup, before any external
// call is made.
func (c *Config) Validate() error {
	llmProvider := domain.AIProvider(c.LLM.Provider)
	if !llmProvider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfig, c.LLM.Provider)
	}
	if llmProvider.RequiresAPIKey() && (c.LLM.APIKey == "" || c.LLM.APIKey == placeholderAPIKey) {
		return fmt.Errorf("%w: %s requires an API key; set llm.api_key or PHISHGUARD_LLM_API_KEY",
			domain.ErrConfig, llmProvider)
	}

	if err := c.ValidateEmbedding(); err != nil {
		return err
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature %.2f outside [0, 2]", domain.ErrConfig, c.LLM.Temperature)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: llm.timeout_seconds must be positive", domain.ErrConfig)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval.top_k must be >= 1", domain.ErrConfig)
	}
	return nil
}

// ValidateEmbedding checks the settings the index build path needs.
// build-index validates with this so an embedding-only run does not
// demand an LLM credential.
func (c *Config) ValidateEmbedding() error {
	embProvider := domain.AIProvider(c.Embedding.Provider)
	if !embProvider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfig, c.Embedding.Provider)
	}
	if embProvider.RequiresAPIKey() && (c.Embedding.APIKey == "" || c.Embedding.APIKey == placeholderAPIKey) {
		return fmt.Errorf("%w: %s requires an API key; set embedding.api_key or PHISHGUARD_EMBEDDING_API_KEY",
			domain.ErrConfig, embProvider)
	}
	if c.Index.Path == "" {
		return fmt.Errorf("%w: index.path must be set", domain.ErrConfig)
	}
	return nil
}

// LLMSettings converts the config to domain settings.
func (c *Config) LLMSettings() domain.LLMSettings {
	return domain.LLMSettings{
		Provider:          domain.AIProvider(c.LLM.Provider),
		Model:             c.LLM.Model,
		BaseURL:           c.LLM.BaseURL,
		APIKey:            c.LLM.APIKey,
		Temperature:       c.LLM.Temperature,
		MaxTokens:         c.LLM.MaxTokens,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
	}
}

// EmbeddingSettings converts the config to domain settings.
func (c *Config) EmbeddingSettings() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		Model:      c.Embedding.Model,
		BaseURL:    c.Embedding.BaseURL,
		APIKey:     c.Embedding.APIKey,
		Dimensions: c.Embedding.Dimensions,
	}
}

// SetLLMAPIKey persists an API key into the config file, preserving any
// other keys already present.
func SetLLMAPIKey(configDir, apiKey string) error {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	raw := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: parsing config file: %v", domain.ErrConfig, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config file: %w", err)
	}

	llm, ok := raw["llm"].(map[string]any)
	if !ok {
		llm = make(map[string]any)
	}
	llm["api_key"] = apiKey
	raw["llm"] = llm

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding config file: %w", err)
	}
	// The file holds a credential.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Package config holds the runtime configuration for sage.
//
// Every option has a default and can be overridden through the environment
// (SAGE_ prefix) or an optional sage.yaml config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Provider identifiers for the completion capability.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderAnthropic  = "anthropic"
)

// Config is the full sage configuration.
type Config struct {
	// Model provider selection: openrouter, ollama or anthropic.
	ModelProvider string `mapstructure:"model_provider"`

	// OpenRouter settings.
	OpenRouterAPIKey  string `mapstructure:"openrouter_api_key"`
	OpenRouterBaseURL string `mapstructure:"openrouter_base_url"`
	DefaultModel      string `mapstructure:"default_model"`

	// Ollama settings.
	OllamaBaseURL string `mapstructure:"ollama_base_url"`
	OllamaModel   string `mapstructure:"ollama_model"`

	// Anthropic settings.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	AnthropicModel  string `mapstructure:"anthropic_model"`

	// Storage paths.
	DataStoragePath string `mapstructure:"data_storage_path"`
	VectorDBPath    string `mapstructure:"vector_db_path"`

	// Memory sizing.
	WorkingMemorySize   int `mapstructure:"working_memory_size"`
	EpisodicMemoryLimit int `mapstructure:"episodic_memory_limit"`

	// Static technique catalog.
	TechniquesFile string `mapstructure:"techniques_file"`
}

// Load reads configuration from the environment (SAGE_* variables) and an
// optional sage.yaml in the working directory. A missing config file is not
// an error; malformed config is.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("sage")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ModelProvider = strings.ToLower(cfg.ModelProvider)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_provider", ProviderOpenRouter)
	// Secrets default to empty so viper knows the keys; without a default,
	// AutomaticEnv never surfaces an env-only value through Unmarshal.
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("default_model", "openrouter/auto")
	v.SetDefault("ollama_base_url", "http://localhost:11434")
	v.SetDefault("ollama_model", "llama3.2:latest")
	v.SetDefault("anthropic_model", "claude-sonnet-4-20250514")
	v.SetDefault("data_storage_path", "./data")
	v.SetDefault("vector_db_path", "./vector_db")
	v.SetDefault("working_memory_size", 10)
	v.SetDefault("episodic_memory_limit", 100)
	v.SetDefault("techniques_file", "./config/therapeutic_techniques.json")
}

package config_test

import (
	"testing"

	"github.com/mindwell/sage/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ModelProvider != config.ProviderOpenRouter {
		t.Errorf("model_provider = %q, want openrouter", cfg.ModelProvider)
	}
	if cfg.WorkingMemorySize != 10 {
		t.Errorf("working_memory_size = %d, want 10", cfg.WorkingMemorySize)
	}
	if cfg.EpisodicMemoryLimit != 100 {
		t.Errorf("episodic_memory_limit = %d, want 100", cfg.EpisodicMemoryLimit)
	}
	if cfg.DataStoragePath != "./data" {
		t.Errorf("data_storage_path = %q, want ./data", cfg.DataStoragePath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SAGE_MODEL_PROVIDER", "Ollama")
	t.Setenv("SAGE_OLLAMA_MODEL", "qwen2.5:7b")
	t.Setenv("SAGE_WORKING_MEMORY_SIZE", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ModelProvider != config.ProviderOllama {
		t.Errorf("model_provider = %q, want ollama (lowercased)", cfg.ModelProvider)
	}
	if cfg.OllamaModel != "qwen2.5:7b" {
		t.Errorf("ollama_model = %q, want qwen2.5:7b", cfg.OllamaModel)
	}
	if cfg.WorkingMemorySize != 5 {
		t.Errorf("working_memory_size = %d, want 5", cfg.WorkingMemorySize)
	}
}

// API keys have no value outside the environment, so they must reach the
// config through SAGE_* variables alone.
func TestLoad_APIKeysFromEnv(t *testing.T) {
	t.Setenv("SAGE_OPENROUTER_API_KEY", "sk-or-test-123")
	t.Setenv("SAGE_ANTHROPIC_API_KEY", "sk-ant-test-456")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OpenRouterAPIKey != "sk-or-test-123" {
		t.Errorf("openrouter_api_key = %q, want sk-or-test-123", cfg.OpenRouterAPIKey)
	}
	if cfg.AnthropicAPIKey != "sk-ant-test-456" {
		t.Errorf("anthropic_api_key = %q, want sk-ant-test-456", cfg.AnthropicAPIKey)
	}
}

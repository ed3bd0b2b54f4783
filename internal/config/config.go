package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// ErrMissingAPIKey is the fatal startup condition for the OpenAI provider.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

type Config struct {
	Provider     ProviderType `json:"provider"`
	OpenAIAPIKey string       `json:"openai_api_key"`
	OllamaModel  string       `json:"ollama_model"`
	OllamaURL    string       `json:"ollama_url"`
}

func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".config", "recommit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads the config file, falling back to environment defaults on
// first run. A .env file in the working directory is honored, best effort.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		applyEnv(&cfg)
		return &cfg, nil
	}

	cfg := &Config{
		Provider:     ProviderOpenAI,
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OllamaModel:  "llama3",
		OllamaURL:    "http://localhost:11434",
	}
	applyEnv(cfg)

	// Persist the first-run config so later invocations are stable even if
	// the environment changes. Not critical if it fails.
	if cfg.OpenAIAPIKey != "" {
		_ = cfg.Save()
	}

	return cfg, nil
}

// applyEnv lets the environment override the file, so hooks can steer the
// tool without touching the user's config.
func applyEnv(cfg *Config) {
	if p := os.Getenv("RECOMMIT_PROVIDER"); p != "" {
		cfg.Provider = ProviderType(p)
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderOllama:
		if c.OllamaURL == "" || c.OllamaModel == "" {
			return errors.New("ollama provider requires ollama_url and ollama_model")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	return nil
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

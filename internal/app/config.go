package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultModel           = "gemini-2.5-flash"
	defaultMaxOutputTokens = 2048
	defaultStorageBackend  = "file"

	// Shown as the first message of every new session.
	defaultGreeting = "Hello! Ask me anything."

	// Appended to the conversation as a model turn when a send fails for
	// any reason other than a rejected API key.
	defaultFallbackReply = "Sorry, something went wrong while generating a reply. " +
		"Please check your network connection and try again in a moment."
)

type Config struct {
	Model           string `yaml:"model"`
	DataDir         string `yaml:"data_dir"`
	Storage         string `yaml:"storage"` // file|sqlite
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	Greeting        string `yaml:"greeting"`
	SystemPrompt    string `yaml:"system_prompt"`
	FallbackReply   string `yaml:"fallback_reply"`
}

func DefaultConfig() Config {
	return Config{
		Model:           defaultModel,
		Storage:         defaultStorageBackend,
		MaxOutputTokens: defaultMaxOutputTokens,
		Greeting:        defaultGreeting,
		FallbackReply:   defaultFallbackReply,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Storage == "" {
		cfg.Storage = defaultStorageBackend
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	if cfg.Greeting == "" {
		cfg.Greeting = defaultGreeting
	}
	if cfg.FallbackReply == "" {
		cfg.FallbackReply = defaultFallbackReply
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "gemchat", "config.yml")
}

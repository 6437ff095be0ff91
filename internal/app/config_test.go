package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != defaultModel {
		t.Fatalf("model default mismatch: %q", cfg.Model)
	}
	if cfg.Storage != "file" {
		t.Fatalf("storage default mismatch: %q", cfg.Storage)
	}
	if cfg.MaxOutputTokens != defaultMaxOutputTokens {
		t.Fatalf("max tokens default mismatch: %d", cfg.MaxOutputTokens)
	}
	if cfg.Greeting == "" || cfg.FallbackReply == "" {
		t.Fatalf("greeting and fallback must have defaults")
	}
}

func TestLoadConfigFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "model: gemini-2.5-pro\nstorage: sqlite\nmax_output_tokens: 0\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Fatalf("model not honored: %q", cfg.Model)
	}
	if cfg.Storage != "sqlite" {
		t.Fatalf("storage not honored: %q", cfg.Storage)
	}
	if cfg.MaxOutputTokens != defaultMaxOutputTokens {
		t.Fatalf("zero max tokens must fall back to default, got %d", cfg.MaxOutputTokens)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	cfg := DefaultConfig()
	cfg.Model = "gemini-2.5-pro"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Model != cfg.Model {
		t.Fatalf("round trip mismatch: got %q want %q", loaded.Model, cfg.Model)
	}
}

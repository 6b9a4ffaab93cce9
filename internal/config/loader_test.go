package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Model = %q, want default", cfg.Anthropic.Model)
	}
	if cfg.Anthropic.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", cfg.Anthropic.MaxTokens)
	}
	if cfg.SMTP.Host != "smtp.gmail.com" || cfg.SMTP.Port != 587 {
		t.Errorf("SMTP defaults = %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	}
	if cfg.Agent.MaxToolRounds != 12 {
		t.Errorf("MaxToolRounds = %d, want 12", cfg.Agent.MaxToolRounds)
	}
	if cfg.Gateway.SessionTTL.Duration() != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.Gateway.SessionTTL.Duration())
	}
}

func TestLoadExpandsEnvTemplates(t *testing.T) {
	// Empty values are skipped by setString, so the file value survives and
	// the assertion is isolated from an ambient ANTHROPIC_API_KEY.
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("TEST_SDR_KEY", "sk-ant-test")

	path := writeFile(t, t.TempDir(), "sdr.jsonc", `{
		// comments are fine
		"anthropic": {
			"api_key": "${{ .Env.TEST_SDR_KEY }}",
			"model": "claude-test",
		},
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("APIKey = %q, want expanded env value", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-test" {
		t.Errorf("Model = %q, want claude-test", cfg.Anthropic.Model)
	}
}

func TestEnvOverridesFileValues(t *testing.T) {
	t.Setenv("SMTP_USERNAME", "env-user")
	t.Setenv("SMTP_PORT", "2525")

	path := writeFile(t, t.TempDir(), "sdr.jsonc", `{
		"smtp": {"username": "file-user", "port": 587}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SMTP.Username != "env-user" {
		t.Errorf("Username = %q, want env-user", cfg.SMTP.Username)
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("Port = %d, want 2525", cfg.SMTP.Port)
	}
}

func TestTavilyKeyImpliesProvider(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Provider != "tavily" {
		t.Errorf("Provider = %q, want tavily", cfg.Search.Provider)
	}
	if !cfg.SearchConfigured() {
		t.Error("SearchConfigured() = false with Tavily key set")
	}
}

func TestEmailConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.EmailConfigured() {
		t.Error("EmailConfigured() = true for empty config")
	}

	cfg.SMTP.Username = "u"
	cfg.SMTP.Password = "p"
	cfg.SMTP.FromEmail = "sdr@example.com"
	if !cfg.EmailConfigured() {
		t.Error("EmailConfigured() = false with full SMTP settings")
	}
}

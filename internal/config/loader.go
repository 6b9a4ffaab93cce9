package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/tailscale/hujson"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, expands ${{ .Env.VAR }} templates,
// applies environment overrides, and fills in defaults.
// A missing file is not an error: the agent can run on environment
// variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand env templates before stripping comments, since templates live in strings.
		expanded := expandEnvTemplates(string(data))
		std, herr := hujson.Standardize([]byte(expanded))
		if herr != nil {
			return nil, fmt.Errorf("standardize config: %w", herr)
		}
		if jerr := json.Unmarshal(std, &cfg); jerr != nil {
			return nil, fmt.Errorf("unmarshal config: %w", jerr)
		}
	case os.IsNotExist(err):
		// Start from zero values; env overrides below carry the load.
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyEnvOverrides maps the flat environment variables the agent has
// always understood onto the config tree. Env wins over file values so
// that a deployment can rotate credentials without touching the file.
func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "CLAUDE_MODEL")
	setString(&cfg.Search.TavilyAPIKey, "TAVILY_API_KEY")
	setString(&cfg.Search.Provider, "SEARCH_PROVIDER")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.FromEmail, "SMTP_FROM_EMAIL")
	setString(&cfg.SMTP.FromName, "SMTP_FROM_NAME")
	setString(&cfg.Skills.Dir, "SKILLS_DIR")

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = p
		}
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Anthropic.MaxTokens = n
		}
	}
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Anthropic.Model == "" {
		cfg.Anthropic.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = 4096
	}
	if cfg.Search.Provider == "" && cfg.Search.TavilyAPIKey != "" {
		cfg.Search.Provider = "tavily"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.FromName == "" {
		cfg.SMTP.FromName = "SDR Agent"
	}
	if cfg.Skills.Dir == "" {
		cfg.Skills.Dir = "./skills"
	}
	if cfg.Agent.MaxToolRounds == 0 {
		cfg.Agent.MaxToolRounds = 12
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 5001
	}
	if cfg.Gateway.SessionTTL == 0 {
		cfg.Gateway.SessionTTL = Duration(30 * time.Minute)
	}
	if cfg.Gateway.EventLog == 0 {
		cfg.Gateway.EventLog = 256
	}
}

package config

import "time"

// Config is the root configuration for the SDR agent.
type Config struct {
	Anthropic AnthropicConfig `json:"anthropic"`
	Search    SearchConfig    `json:"search"`
	SMTP      SMTPConfig      `json:"smtp"`
	Skills    SkillsConfig    `json:"skills"`
	Agent     AgentConfig     `json:"agent"`
	Gateway   GatewayConfig   `json:"gateway"`
}

// AnthropicConfig configures the Claude endpoint.
type AnthropicConfig struct {
	APIKey    string   `json:"api_key"` // Direct key or ${{ .Env.ANTHROPIC_API_KEY }} template
	Model     string   `json:"model"`
	BaseURL   string   `json:"base_url,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// SearchConfig configures the web search provider.
type SearchConfig struct {
	Provider     string   `json:"provider"` // "tavily" (default when a key is set), "duckduckgo"
	TavilyAPIKey string   `json:"tavily_api_key,omitempty"`
	MaxResults   int      `json:"max_results,omitempty"`
	Timeout      Duration `json:"timeout,omitempty"`
}

// SMTPConfig configures outbound email.
type SMTPConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	FromEmail string `json:"from_email,omitempty"`
	FromName  string `json:"from_name,omitempty"`
}

// SkillsConfig configures skill discovery.
type SkillsConfig struct {
	Dir string `json:"dir"` // skills directory (default: ./skills)
}

// AgentConfig holds orchestration settings.
type AgentConfig struct {
	MaxToolRounds int    `json:"max_tool_rounds,omitempty"` // model/tool round-trips per user message
	SystemPrompt  string `json:"system_prompt,omitempty"`   // full override of the built-in prompt
}

// GatewayConfig holds the web gateway settings.
type GatewayConfig struct {
	Host       string   `json:"host"`
	Port       int      `json:"port"`
	SessionTTL Duration `json:"session_ttl,omitempty"` // idle sessions are evicted after this
	EventLog   int      `json:"event_log,omitempty"`   // ring buffer size for /api/events
}

// EmailConfigured reports whether SMTP is usable.
// Username, password, and a from address are all required.
func (c *Config) EmailConfigured() bool {
	return c.SMTP.Username != "" && c.SMTP.Password != "" && c.SMTP.FromEmail != ""
}

// SearchConfigured reports whether a search provider is usable.
// DuckDuckGo needs no credential; Tavily needs an API key.
func (c *Config) SearchConfigured() bool {
	return c.Search.Provider == "duckduckgo" || c.Search.TavilyAPIKey != ""
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/bbdragon2023/aiSDR/internal/llm"
	"github.com/bbdragon2023/aiSDR/internal/mail"
	"github.com/bbdragon2023/aiSDR/internal/search"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// resultContentLimit bounds each search result snippet to keep the
// prompt from growing unbounded across research rounds.
const resultContentLimit = 500

// toolKind is the closed set of dispatchable tools. Dispatch matches
// on it exhaustively; a name outside the set is toolUnknown, which is
// an answerable condition, not an error.
type toolKind int

const (
	toolUnknown toolKind = iota
	toolWebSearch
	toolSendEmail
	toolReadSkill
)

func kindOf(name string) toolKind {
	switch name {
	case llm.ToolWebSearch:
		return toolWebSearch
	case llm.ToolSendEmail:
		return toolSendEmail
	case llm.ToolReadSkill:
		return toolReadSkill
	default:
		return toolUnknown
	}
}

// Dispatcher executes tool invocations. Every outcome is a string the
// model can read; expected failures (missing config, unknown skill,
// provider errors) are encoded with an "Error:" prefix so callers can
// derive a success flag by prefix inspection.
type Dispatcher struct {
	registry   *skills.Registry
	search     search.Provider // nil = search disabled
	mailer     mail.Sender     // nil = email disabled
	maxResults int
}

// NewDispatcher wires the dispatch table. Nil search or mailer mean
// the corresponding feature is disabled, not broken.
func NewDispatcher(registry *skills.Registry, provider search.Provider, mailer mail.Sender, maxResults int) *Dispatcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Dispatcher{
		registry:   registry,
		search:     provider,
		mailer:     mailer,
		maxResults: maxResults,
	}
}

// Execute runs one invocation and returns the outcome text.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	switch kindOf(name) {
	case toolWebSearch:
		return d.webSearch(ctx, args)
	case toolSendEmail:
		return d.sendEmail(ctx, args)
	case toolReadSkill:
		return d.readSkill(args)
	default:
		return fmt.Sprintf("Unknown tool: %s", name)
	}
}

func (d *Dispatcher) webSearch(ctx context.Context, args map[string]any) string {
	if d.search == nil {
		return "Error: web search is not configured. Set TAVILY_API_KEY in your environment or configure a search provider."
	}

	query := argString(args, "query")
	maxResults := argInt(args, "max_results", d.maxResults)

	res, err := d.search.Search(ctx, query, maxResults)
	if err != nil {
		return fmt.Sprintf("Error: search failed: %v", err)
	}

	var sb strings.Builder
	if res.Answer != "" {
		fmt.Fprintf(&sb, "Summary: %s\n\n", res.Answer)
	}
	sb.WriteString("Search Results:")
	if len(res.Results) == 0 {
		sb.WriteString("\n(no results)")
	}
	for i, r := range res.Results {
		fmt.Fprintf(&sb, "\n%d. %s\n   URL: %s\n   %s", i+1, r.Title, r.URL, truncate(r.Content, resultContentLimit))
	}
	return sb.String()
}

func (d *Dispatcher) sendEmail(ctx context.Context, args map[string]any) string {
	if d.mailer == nil {
		return "Error: email is not configured. Please set SMTP settings in your environment."
	}

	_, message := d.mailer.Send(ctx, mail.Message{
		ToEmail: argString(args, "to_email"),
		ToName:  argString(args, "to_name"),
		Subject: argString(args, "subject"),
		Body:    argString(args, "body"),
	})
	// the sender's message is the outcome, success or not
	return message
}

func (d *Dispatcher) readSkill(args map[string]any) string {
	name := argString(args, "skill_name")

	skill, ok := d.registry.Get(name)
	if !ok {
		return fmt.Sprintf("Error: skill %q not found. Available skills: %s", name, strings.Join(d.registry.Names(), ", "))
	}
	return fmt.Sprintf("# %s\n\n%s", skill.Name, skill.Instructions)
}

func argString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func argInt(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

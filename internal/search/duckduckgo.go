package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	duckduckgo "github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/tool"
)

// DuckDuckGo wraps the eino-ext text search tool. No API key needed,
// no synthesized answer either.
type DuckDuckGo struct {
	tool       tool.InvokableTool
	maxResults int
}

// NewDuckDuckGo creates a keyless search provider.
func NewDuckDuckGo(ctx context.Context, maxResults int, timeout time.Duration) (*DuckDuckGo, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	t, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web using DuckDuckGo",
		MaxResults: maxResults,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: init: %w", err)
	}

	return &DuckDuckGo{tool: t, maxResults: maxResults}, nil
}

type duckduckgoResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) (*Results, error) {
	args, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: encode query: %w", err)
	}

	raw, err := d.tool.InvokableRun(ctx, string(args))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}

	return parseDuckDuckGo(raw, maxResults), nil
}

// parseDuckDuckGo converts the tool's JSON output into Results. The
// output shape is the tool's own; when it cannot be decoded the raw
// text is returned as a single result so nothing is lost.
func parseDuckDuckGo(raw string, maxResults int) *Results {
	var parsed struct {
		Results []duckduckgoResult `json:"results"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed.Results) == 0 {
		return &Results{Results: []Result{{Title: "DuckDuckGo results", Content: raw}}}
	}

	out := &Results{}
	for _, r := range parsed.Results {
		if maxResults > 0 && len(out.Results) >= maxResults {
			break
		}
		content := r.Summary
		if content == "" {
			content = r.Description
		}
		if content == "" {
			content = r.Content
		}
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Content: content})
	}
	return out
}

// Package search abstracts the web search collaborator behind a small
// provider interface. Which provider backs it is a config concern:
// Tavily when an API key is present, DuckDuckGo for keyless setups.
package search

import (
	"context"
	"fmt"

	"github.com/bbdragon2023/aiSDR/internal/config"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Results is a provider response: an optional synthesized answer plus
// ordered hits.
type Results struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Provider executes web searches.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) (*Results, error)
}

// NewProvider builds the configured provider. A nil Provider with nil
// error means search is disabled, which is a valid state: the
// dispatcher reports it to the model as outcome text.
func NewProvider(ctx context.Context, cfg config.SearchConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "tavily":
		if cfg.TavilyAPIKey == "" {
			return nil, nil
		}
		return NewTavily(cfg.TavilyAPIKey, cfg.Timeout.Duration()), nil
	case "duckduckgo":
		return NewDuckDuckGo(ctx, cfg.MaxResults, cfg.Timeout.Duration())
	default:
		return nil, fmt.Errorf("search: unknown provider %q", cfg.Provider)
	}
}

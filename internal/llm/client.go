package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bbdragon2023/aiSDR/internal/config"
)

// Client is the model gateway: it owns one conversation and turns raw
// endpoint output into TurnResults. One conversation is driven by at
// most one orchestration loop at a time; History and Reset are safe
// to call from other goroutines.
type Client struct {
	client    anthropic.Client
	modelName string
	maxTokens int

	mu    sync.Mutex
	turns []Turn
}

// NewClient creates a gateway for the configured Claude endpoint.
func NewClient(cfg config.AnthropicConfig) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout.Duration() > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout.Duration()))
	} else {
		opts = append(opts, option.WithRequestTimeout(60*time.Second))
	}

	return &Client{
		client:    anthropic.NewClient(opts...),
		modelName: cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// StartTurn appends the user message and runs one endpoint round-trip.
// The assistant turn, tool invocations included, is recorded before
// returning so a continuation call has full context.
func (c *Client) StartTurn(ctx context.Context, userText, systemPrompt string) (*TurnResult, error) {
	c.mu.Lock()
	c.turns = append(c.turns, Turn{Role: RoleUser, Text: userText})
	history := c.snapshot()
	c.mu.Unlock()

	return c.complete(ctx, history, systemPrompt)
}

// ContinueTurn appends one user turn carrying the whole outcome batch,
// in invocation order, and runs the next round-trip. The endpoint
// requires all outcomes for an assistant turn to arrive together.
func (c *Client) ContinueTurn(ctx context.Context, outcomes []ToolOutcome, systemPrompt string) (*TurnResult, error) {
	c.mu.Lock()
	last := len(c.turns) - 1
	if last < 0 || c.turns[last].Role != RoleAssistant || len(c.turns[last].Invocations) == 0 {
		c.mu.Unlock()
		return nil, errors.New("continue_turn without a pending assistant tool request")
	}
	c.turns = append(c.turns, Turn{Role: RoleUser, Outcomes: outcomes})
	history := c.snapshot()
	c.mu.Unlock()

	return c.complete(ctx, history, systemPrompt)
}

// Reset clears the conversation. Idempotent.
func (c *Client) Reset() {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()
}

// History returns a copy of the conversation so far.
func (c *Client) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Client) snapshot() []Turn {
	return append([]Turn(nil), c.turns...)
}

func (c *Client) complete(ctx context.Context, history []Turn, systemPrompt string) (*TurnResult, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: int64(c.maxTokens),
		Messages:  toMessageParams(history),
		Tools:     toolSchema(),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	result, assistant := parseResponse(resp)

	c.mu.Lock()
	c.turns = append(c.turns, assistant)
	c.mu.Unlock()

	return result, nil
}

// toMessageParams converts conversation turns to endpoint messages.
func toMessageParams(turns []Turn) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		switch {
		case t.Role == RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if t.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(t.Text))
			}
			for _, inv := range t.Invocations {
				blocks = append(blocks, anthropic.NewToolUseBlock(inv.ID, inv.Arguments, inv.Name))
			}
			msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))

		case len(t.Outcomes) > 0:
			var blocks []anthropic.ContentBlockParamUnion
			for _, o := range t.Outcomes {
				blocks = append(blocks, anthropic.NewToolResultBlock(o.InvocationID, o.Content, false))
			}
			msgs = append(msgs, anthropic.NewUserMessage(blocks...))

		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	return msgs
}

// parseResponse splits the endpoint's content blocks into text and
// tool invocations, preserving emission order.
func parseResponse(resp *anthropic.Message) (*TurnResult, Turn) {
	result := &TurnResult{}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Text += block.Text
		case "tool_use":
			args := map[string]any{}
			if raw, err := json.Marshal(block.Input); err == nil {
				_ = json.Unmarshal(raw, &args)
			}
			result.Invocations = append(result.Invocations, ToolInvocation{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	switch resp.StopReason {
	case anthropic.StopReasonToolUse:
		result.StopReason = "tool_calls"
	case anthropic.StopReasonMaxTokens:
		result.StopReason = "length"
	default:
		result.StopReason = "stop"
	}

	assistant := Turn{
		Role:        RoleAssistant,
		Text:        result.Text,
		Invocations: result.Invocations,
	}
	return result, assistant
}

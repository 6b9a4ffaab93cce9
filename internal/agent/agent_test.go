package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/bbdragon2023/aiSDR/internal/config"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/llm"
)

// stubGateway replays a scripted sequence of turn results: the first
// for StartTurn, the rest for successive ContinueTurn calls.
type stubGateway struct {
	script []*llm.TurnResult
	err    error

	startCalls    int
	continueCalls int
	gotOutcomes   [][]llm.ToolOutcome
}

func (g *stubGateway) StartTurn(_ context.Context, _, _ string) (*llm.TurnResult, error) {
	g.startCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.next(), nil
}

func (g *stubGateway) ContinueTurn(_ context.Context, outcomes []llm.ToolOutcome, _ string) (*llm.TurnResult, error) {
	g.continueCalls++
	g.gotOutcomes = append(g.gotOutcomes, outcomes)
	return g.next(), nil
}

func (g *stubGateway) next() *llm.TurnResult {
	res := g.script[0]
	if len(g.script) > 1 {
		g.script = g.script[1:]
	}
	return res
}

func (g *stubGateway) Reset() {}

func (g *stubGateway) History() []llm.Turn { return nil }

func terminal(text string) *llm.TurnResult {
	return &llm.TurnResult{Text: text, StopReason: "stop"}
}

func toolRound(invs ...llm.ToolInvocation) *llm.TurnResult {
	return &llm.TurnResult{Invocations: invs, StopReason: "tool_calls"}
}

func testAgent(t *testing.T, gateway ModelGateway, maxRounds int) *Agent {
	t.Helper()
	cfg := &config.Config{}
	cfg.Agent.MaxToolRounds = maxRounds
	registry := testRegistry(t)
	dispatcher := NewDispatcher(registry, nil, nil, 5)
	return New(cfg, "test-session", registry, gateway, dispatcher, events.NewBus(8))
}

func TestChatTerminalFirstResponse(t *testing.T) {
	gateway := &stubGateway{script: []*llm.TurnResult{terminal("Hello there.")}}
	a := testAgent(t, gateway, 12)

	got, err := a.Chat(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Hello there." {
		t.Fatalf("text = %q", got)
	}
	if gateway.continueCalls != 0 {
		t.Fatalf("continue calls = %d, want 0", gateway.continueCalls)
	}
}

func TestChatExecutesInvocationsInOrder(t *testing.T) {
	gateway := &stubGateway{script: []*llm.TurnResult{
		toolRound(
			llm.ToolInvocation{ID: "call_1", Name: "read_skill", Arguments: map[string]any{"skill_name": "missing"}},
			llm.ToolInvocation{ID: "call_2", Name: "web_search", Arguments: map[string]any{"query": "acme"}},
		),
		terminal("Done."),
	}}
	a := testAgent(t, gateway, 12)

	var seen []events.Event
	got, err := a.Chat(context.Background(), "research acme", func(e events.Event) {
		seen = append(seen, e)
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "Done." {
		t.Fatalf("text = %q", got)
	}
	if gateway.continueCalls != 1 {
		t.Fatalf("continue calls = %d, want 1", gateway.continueCalls)
	}

	outcomes := gateway.gotOutcomes[0]
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[0].InvocationID != "call_1" || outcomes[1].InvocationID != "call_2" {
		t.Fatalf("outcome ids out of order: %q, %q", outcomes[0].InvocationID, outcomes[1].InvocationID)
	}

	var types []events.EventType
	for _, e := range seen {
		types = append(types, e.Type)
	}
	want := []events.EventType{
		events.EventThinking,
		events.EventToolCall, events.EventToolResult,
		events.EventToolCall, events.EventToolResult,
		events.EventAssistantMessage,
	}
	if len(types) != len(want) {
		t.Fatalf("events = %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, types[i], want[i])
		}
	}

	// both tools failed (nothing configured, skill missing), so
	// results carry success=false
	for _, e := range seen {
		if e.Type != events.EventToolResult {
			continue
		}
		p, ok := events.GetToolResultPayload(e)
		if !ok {
			t.Fatalf("tool result payload missing on %s", e.ID)
		}
		if p.Success {
			t.Fatalf("expected failed tool result for %s", p.Name)
		}
	}
}

func TestChatToolRoundLimit(t *testing.T) {
	// the script's last entry repeats forever: the model never stops
	// asking for tools
	gateway := &stubGateway{script: []*llm.TurnResult{
		toolRound(llm.ToolInvocation{ID: "c", Name: "web_search", Arguments: map[string]any{"query": "x"}}),
	}}
	a := testAgent(t, gateway, 3)

	_, err := a.Chat(context.Background(), "loop", nil)
	if !errors.Is(err, ErrToolRoundsExceeded) {
		t.Fatalf("err = %v, want ErrToolRoundsExceeded", err)
	}
	if gateway.continueCalls != 3 {
		t.Fatalf("continue calls = %d, want 3", gateway.continueCalls)
	}
}

func TestChatStartTurnError(t *testing.T) {
	gateway := &stubGateway{err: errors.New("model unavailable")}
	a := testAgent(t, gateway, 12)

	var seen []events.Event
	_, err := a.Chat(context.Background(), "hi", func(e events.Event) {
		seen = append(seen, e)
	})
	if err == nil {
		t.Fatal("expected error")
	}

	last := seen[len(seen)-1]
	if last.Type != events.EventAssistantMessage {
		t.Fatalf("last event = %s", last.Type)
	}
	p, ok := events.GetAssistantMessagePayload(last)
	if !ok {
		t.Fatal("assistant payload missing")
	}
	if p.Error == "" {
		t.Fatal("expected error payload")
	}
}

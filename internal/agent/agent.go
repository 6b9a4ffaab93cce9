// Package agent is the orchestration core: it drives the model/tool
// round-trips that turn one user message into a final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bbdragon2023/aiSDR/internal/config"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/llm"
	"github.com/bbdragon2023/aiSDR/internal/mail"
	"github.com/bbdragon2023/aiSDR/internal/search"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// ErrToolRoundsExceeded reports a model that kept requesting tools
// past the configured round limit. The conversation is left intact so
// the caller can decide whether to continue with a fresh message.
var ErrToolRoundsExceeded = errors.New("tool round limit exceeded")

// ModelGateway is the endpoint contract the loop drives. *llm.Client
// is the production implementation; tests substitute stubs.
type ModelGateway interface {
	StartTurn(ctx context.Context, userText, systemPrompt string) (*llm.TurnResult, error)
	ContinueTurn(ctx context.Context, outcomes []llm.ToolOutcome, systemPrompt string) (*llm.TurnResult, error)
	Reset()
	History() []llm.Turn
}

// Observer receives the turn's lifecycle events synchronously, in
// order. It drives both the CLI spinner and the SSE stream.
type Observer func(events.Event)

// Agent binds one conversation to one gateway and one dispatcher. At
// most one Chat call may be in flight per Agent; distinct Agents are
// fully independent apart from the shared read-only skill registry.
type Agent struct {
	sessionID     string
	registry      *skills.Registry
	gateway       ModelGateway
	dispatcher    *Dispatcher
	bus           *events.Bus
	maxToolRounds int
	systemPrompt  string
}

// New assembles an agent from prebuilt collaborators.
func New(cfg *config.Config, sessionID string, registry *skills.Registry, gateway ModelGateway, dispatcher *Dispatcher, bus *events.Bus) *Agent {
	return &Agent{
		sessionID:     sessionID,
		registry:      registry,
		gateway:       gateway,
		dispatcher:    dispatcher,
		bus:           bus,
		maxToolRounds: cfg.Agent.MaxToolRounds,
		systemPrompt:  cfg.Agent.SystemPrompt,
	}
}

// NewFromConfig builds an agent with production collaborators: the
// Claude gateway, the configured search provider, and SMTP when
// configured. Missing search or email credentials disable the feature
// rather than failing construction.
func NewFromConfig(ctx context.Context, cfg *config.Config, sessionID string, registry *skills.Registry, bus *events.Bus) (*Agent, error) {
	provider, err := search.NewProvider(ctx, cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("init search provider: %w", err)
	}
	if provider == nil {
		slog.Debug("web search disabled, no provider configured")
	}

	var sender mail.Sender
	if cfg.EmailConfigured() {
		smtp, err := mail.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("init mail sender: %w", err)
		}
		sender = smtp
	} else {
		slog.Debug("email disabled, SMTP not fully configured")
	}

	gateway := llm.NewClient(cfg.Anthropic)
	dispatcher := NewDispatcher(registry, provider, sender, cfg.Search.MaxResults)
	return New(cfg, sessionID, registry, gateway, dispatcher, bus), nil
}

// Chat processes one user message: StartTurn, then while the model
// has pending invocations, execute them all in order and feed the
// outcome batch back in a single continuation. Returns the model's
// final text.
func (a *Agent) Chat(ctx context.Context, message string, observe Observer) (string, error) {
	system := a.buildSystemPrompt()

	a.emit(observe, events.NewTyped(events.SourceAgent, a.sessionID, events.ThinkingPayload{Status: "processing"}))

	res, err := a.gateway.StartTurn(ctx, message, system)
	if err != nil {
		return "", a.fail(observe, err)
	}

	rounds := 0
	for !res.Terminal() {
		rounds++
		if a.maxToolRounds > 0 && rounds > a.maxToolRounds {
			err := fmt.Errorf("%w after %d rounds", ErrToolRoundsExceeded, a.maxToolRounds)
			return "", a.fail(observe, err)
		}

		outcomes := make([]llm.ToolOutcome, 0, len(res.Invocations))
		for _, inv := range res.Invocations {
			a.emit(observe, events.NewTyped(events.SourceAgent, a.sessionID, events.ToolCallPayload{
				Name:      inv.Name,
				Arguments: inv.Arguments,
			}))

			slog.Debug("executing tool", "session", a.sessionID, "tool", inv.Name)
			content := a.dispatcher.Execute(ctx, inv.Name, inv.Arguments)

			a.emit(observe, events.NewTyped(events.SourceAgent, a.sessionID, events.ToolResultPayload{
				Name:    inv.Name,
				Success: !strings.HasPrefix(content, "Error"),
			}))

			outcomes = append(outcomes, llm.ToolOutcome{InvocationID: inv.ID, Content: content})
		}

		res, err = a.gateway.ContinueTurn(ctx, outcomes, system)
		if err != nil {
			return "", a.fail(observe, err)
		}
	}

	a.emit(observe, events.NewTyped(events.SourceAgent, a.sessionID, events.AssistantMessagePayload{Content: res.Text}))
	return res.Text, nil
}

// ResearchCompany runs a canned company research brief through Chat.
func (a *Agent) ResearchCompany(ctx context.Context, company string, observe Observer) (string, error) {
	return a.Chat(ctx, researchCompanyPrompt(company), observe)
}

// ResearchProspect runs a canned prospect research brief through Chat.
// Company is optional context.
func (a *Agent) ResearchProspect(ctx context.Context, prospect, company string, observe Observer) (string, error) {
	return a.Chat(ctx, researchProspectPrompt(prospect, company), observe)
}

// Reset clears the conversation.
func (a *Agent) Reset() {
	a.gateway.Reset()
}

// History exposes the conversation for the web history endpoint.
func (a *Agent) History() []llm.Turn {
	return a.gateway.History()
}

// SessionID returns the opaque key this agent is bound to.
func (a *Agent) SessionID() string {
	return a.sessionID
}

func (a *Agent) emit(observe Observer, e events.Event) {
	if observe != nil {
		observe(e)
	}
	if a.bus != nil {
		a.bus.Publish(e)
	}
}

func (a *Agent) fail(observe Observer, err error) error {
	a.emit(observe, events.NewTyped(events.SourceAgent, a.sessionID, events.AssistantMessagePayload{Error: err.Error()}))
	return err
}

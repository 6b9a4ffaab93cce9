// Package llm wraps the Claude chat-completion endpoint behind the
// gateway the orchestration loop talks to: ordered conversation
// history, the fixed tool schema, and structured turn results.
package llm

// Role attributes a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolInvocation is a structured tool request emitted by the model.
// ID is opaque and must be echoed back unchanged in the outcome.
type ToolInvocation struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolOutcome is the string result of one invocation. Failures are
// encoded in Content, never as errors: the model reads and reacts to
// them conversationally.
type ToolOutcome struct {
	InvocationID string `json:"invocation_id"`
	Content      string `json:"content"`
}

// Turn is one role-attributed unit of conversation content. Assistant
// turns may carry tool invocations alongside text; user turns carry
// either text or the outcome batch for the preceding assistant turn.
type Turn struct {
	Role        Role             `json:"role"`
	Text        string           `json:"text,omitempty"`
	Invocations []ToolInvocation `json:"invocations,omitempty"`
	Outcomes    []ToolOutcome    `json:"outcomes,omitempty"`
}

// TurnResult is the parsed output of one endpoint round-trip.
type TurnResult struct {
	Text        string
	Invocations []ToolInvocation
	StopReason  string
}

// Terminal reports whether the loop can stop: no pending invocations.
func (r *TurnResult) Terminal() bool {
	return len(r.Invocations) == 0
}

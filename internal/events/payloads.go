package events

import "encoding/json"

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type ThinkingPayload struct {
	Status string `json:"status"`
}

func (ThinkingPayload) EventType() EventType { return EventThinking }

type ToolCallPayload struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

func (ToolCallPayload) EventType() EventType { return EventToolCall }

type ToolResultPayload struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
}

func (ToolResultPayload) EventType() EventType { return EventToolResult }

type AssistantMessagePayload struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func (AssistantMessagePayload) EventType() EventType { return EventAssistantMessage }

// NewTyped builds an Event from a typed payload.
func NewTyped(source EventSource, sessionID string, payload EventPayload) Event {
	return New(payload.EventType(), source, sessionID, toMap(payload))
}

func toMap(payload EventPayload) map[string]any {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func decode[T any](e Event) (T, bool) {
	var out T
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false
	}
	return out, true
}

// GetToolCallPayload extracts the tool.call payload from an event.
func GetToolCallPayload(e Event) (ToolCallPayload, bool) {
	if e.Type != EventToolCall {
		return ToolCallPayload{}, false
	}
	return decode[ToolCallPayload](e)
}

// GetToolResultPayload extracts the tool.result payload from an event.
func GetToolResultPayload(e Event) (ToolResultPayload, bool) {
	if e.Type != EventToolResult {
		return ToolResultPayload{}, false
	}
	return decode[ToolResultPayload](e)
}

// GetAssistantMessagePayload extracts the assistant.message payload.
func GetAssistantMessagePayload(e Event) (AssistantMessagePayload, bool) {
	if e.Type != EventAssistantMessage {
		return AssistantMessagePayload{}, false
	}
	return decode[AssistantMessagePayload](e)
}

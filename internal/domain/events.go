package domain

import "encoding/json"

type EventType string

const (
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
	EventToken     EventType = "token"
	EventDone      EventType = "done"
	EventError     EventType = "error"
)

// StreamEvent is one entry in a turn's ordered progress stream. Exactly one
// terminal event (done or error) closes every stream. The payload fields are
// variant-specific; unused ones stay empty on the wire.
type StreamEvent struct {
	Type EventType `json:"type"`

	// tool_start, tool_end
	Tool   string          `json:"tool,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`

	// token
	Text string `json:"text,omitempty"`

	// done
	CleanResponse       string   `json:"clean_response,omitempty"`
	FollowUpSuggestions []string `json:"follow_up_suggestions,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

func ToolStartEvent(tool string) StreamEvent {
	return StreamEvent{Type: EventToolStart, Tool: tool}
}

func ToolEndEvent(res ToolResult) StreamEvent {
	return StreamEvent{Type: EventToolEnd, Tool: res.Name, Input: res.Input, Output: res.Output}
}

func TokenEvent(text string) StreamEvent {
	return StreamEvent{Type: EventToken, Text: text}
}

func DoneEvent(cleanResponse string, suggestions []string) StreamEvent {
	return StreamEvent{Type: EventDone, CleanResponse: cleanResponse, FollowUpSuggestions: suggestions}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Message: message}
}

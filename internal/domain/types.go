package domain

import (
	"encoding/json"
	"time"
)

type SessionID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Binding selects how the model is invoked for one cycle: Plan attaches the
// tool registry and forces at least one tool call, Free attaches no tools so
// the model cannot request another one.
type Binding int

const (
	BindingPlan Binding = iota
	BindingFree
)

func (b Binding) String() string {
	if b == BindingFree {
		return "free"
	}
	return "plan"
}

type Timestamp = time.Time

// Message is one entry in a turn's transcript: user text, an assistant reply
// (possibly carrying tool calls), or a tool result.
type Message struct {
	Role       Role        `json:"role"`
	Text       string      `json:"text,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
	CreatedAt  Timestamp   `json:"created_at,omitempty"`
}

// ToolCall is a request the model emitted to invoke a named tool.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult pairs 1:1 with the ToolCall that produced it. Immutable once
// appended to the transcript.
type ToolResult struct {
	CallID string          `json:"call_id"`
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

// ReasoningStep is the client-facing record of one tool invocation, collected
// in the order the model requested them.
type ReasoningStep struct {
	Tool   string          `json:"tool"`
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

func ToolResultMessage(res ToolResult) Message {
	return Message{Role: RoleTool, ToolResult: &res}
}

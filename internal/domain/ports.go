package domain

import (
	"context"
	"time"
)

// ModelClient defines how the core application invokes the language model.
// A single client serves both bindings; the binding travels with the request.
type ModelClient interface {
	Converse(ctx context.Context, req ModelRequest) (*ModelReply, error)
}

// ModelRequest is one model invocation. When OnToken is set the adapter
// streams text chunks through it as they are produced; tool-use chunks are
// never surfaced as tokens.
type ModelRequest struct {
	Binding  Binding
	System   string
	Messages []Message
	OnToken  func(text string)
}

// ModelReply is the model's full output for one invocation.
type ModelReply struct {
	Text      string
	ToolCalls []ToolCall
}

// SessionStore defines session-history persistence. History returns an empty
// slice for unknown sessions. Append persists the given messages, trims the
// session to the store's configured cap and refreshes the TTL.
type SessionStore interface {
	History(ctx context.Context, id SessionID) ([]Message, error)
	Append(ctx context.Context, id SessionID, msgs []Message, ttl time.Duration) error
}

package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// MockModel is a scripted domain.ModelClient for local runs and tests. Each
// Converse call pops the next queued reply; once the queue is empty it keeps
// returning a canned text answer. Requests are recorded for assertions.
type MockModel struct {
	mu       sync.Mutex
	replies  []*domain.ModelReply
	Requests []domain.ModelRequest
}

func NewMockModel(replies ...*domain.ModelReply) *MockModel {
	return &MockModel{replies: replies}
}

// TextReply builds a plain-text scripted reply.
func TextReply(text string) *domain.ModelReply {
	return &domain.ModelReply{Text: text}
}

// ToolCallReply builds a scripted reply that requests the given tool calls.
// Inputs are JSON object literals.
func ToolCallReply(calls ...domain.ToolCall) *domain.ModelReply {
	return &domain.ModelReply{ToolCalls: calls}
}

// Call is a convenience constructor for one scripted tool call.
func Call(id, name, input string) domain.ToolCall {
	return domain.ToolCall{ID: id, Name: name, Input: json.RawMessage(input)}
}

func (m *MockModel) Converse(_ context.Context, req domain.ModelRequest) (*domain.ModelReply, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	var reply *domain.ModelReply
	if len(m.replies) > 0 {
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	m.mu.Unlock()

	if reply == nil {
		reply = TextReply(`I'd love to help plan your trip. Tell me where you're thinking of going!` +
			"\n" + `<suggestions>["What destinations do you cover?", "Plan me a week in Japan", "How much is 5 days in Bali?"]</suggestions>`)
	}
	if req.OnToken != nil && reply.Text != "" {
		req.OnToken(reply.Text)
	}
	return reply, nil
}

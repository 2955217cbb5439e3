// Package agentflow drives one turn of the trip-planning agent: a bounded
// Router -> Model -> Tool-Execution cycle that ends in a composed answer.
package agentflow

import (
	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// AgentState is the loop-scoped transcript for one in-flight turn. It is
// owned by exactly one Loop.Run call and discarded when the turn ends; only
// the final user/assistant pair outlives it, via the session store.
type AgentState struct {
	Messages []domain.Message
	Steps    []domain.ReasoningStep

	userText    string
	toolResults int
	invoked     map[string]int
}

// NewAgentState seeds a turn with the prior conversation and the new user
// message.
func NewAgentState(history []domain.Message, userText string) *AgentState {
	msgs := make([]domain.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.UserMessage(userText))
	return &AgentState{
		Messages: msgs,
		userText: userText,
		invoked:  make(map[string]int),
	}
}

// UserText is the raw text of the turn's user message.
func (s *AgentState) UserText() string { return s.userText }

// ToolResultCount is the number of tool-result messages accumulated this
// turn. The router's safety cap is defined over this count.
func (s *AgentState) ToolResultCount() int { return s.toolResults }

// InvokedCount reports how many times the named tool has produced a result
// this turn.
func (s *AgentState) InvokedCount(name string) int { return s.invoked[name] }

// AppendAssistant records a model reply, including any tool calls it carries.
func (s *AgentState) AppendAssistant(reply *domain.ModelReply) {
	s.Messages = append(s.Messages, domain.Message{
		Role:      domain.RoleAssistant,
		Text:      reply.Text,
		ToolCalls: reply.ToolCalls,
	})
}

// AppendToolResult records one executed tool call. Results must be appended
// in the order the model requested the calls so routing stays deterministic.
func (s *AgentState) AppendToolResult(res domain.ToolResult) {
	s.Messages = append(s.Messages, domain.ToolResultMessage(res))
	s.Steps = append(s.Steps, domain.ReasoningStep{Tool: res.Name, Input: res.Input, Output: res.Output})
	s.toolResults++
	s.invoked[res.Name]++
}

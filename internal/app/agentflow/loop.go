package agentflow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/voyant-travel/voyant-agent/internal/app/tools"
	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// Result is a completed turn: the assistant's raw answer text (suggestions
// tail still attached) and every tool step taken to produce it.
type Result struct {
	Answer string
	Steps  []domain.ReasoningStep
}

// Loop runs the per-turn state machine: route, invoke the model under the
// chosen binding, execute any requested tools, and repeat until the router
// stops the cycle, then compose the final answer under the free binding.
type Loop struct {
	model    domain.ModelClient
	registry *tools.Registry
	router   *Router
	system   string
	logger   *slog.Logger
}

func NewLoop(model domain.ModelClient, registry *tools.Registry, router *Router, system string, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{model: model, registry: registry, router: router, system: system, logger: logger}
}

// Run executes one turn. Progress events go to the emitter when one is given;
// the caller owns the emitter's lifecycle and terminal event. A returned
// error means the turn failed with no answer.
func (l *Loop) Run(ctx context.Context, userText string, history []domain.Message, em *Emitter) (*Result, error) {
	state := NewAgentState(history, userText)

	for {
		d := l.router.Decide(state)
		l.logger.DebugContext(ctx, "routing decision",
			slog.String("binding", d.Binding.String()),
			slog.Bool("continue", d.Continue),
			slog.Int("tool_results", state.ToolResultCount()),
		)

		if !d.Continue {
			return l.compose(ctx, state, d.Binding, em)
		}

		reply, err := l.model.Converse(ctx, domain.ModelRequest{
			Binding:  d.Binding,
			System:   l.system,
			Messages: state.Messages,
		})
		if err != nil {
			return nil, &domain.ModelInvocationError{Binding: d.Binding, Err: err}
		}
		state.AppendAssistant(reply)

		// The plan binding forces tool use, but a fallback model may still
		// answer in plain text. Take that text as the final answer.
		if len(reply.ToolCalls) == 0 {
			return &Result{Answer: reply.Text, Steps: state.Steps}, nil
		}

		results, err := l.executeTools(ctx, reply.ToolCalls, em)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			em.Emit(ctx, domain.ToolEndEvent(res))
			state.AppendToolResult(res)
		}
	}
}

// executeTools runs one cycle's tool calls concurrently and returns results
// in request order. tool_start events are emitted up front, in order, so the
// stream never interleaves starts with a later call's end.
func (l *Loop) executeTools(ctx context.Context, calls []domain.ToolCall, em *Emitter) ([]domain.ToolResult, error) {
	for _, call := range calls {
		em.Emit(ctx, domain.ToolStartEvent(call.Name))
	}

	results := make([]domain.ToolResult, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			out, err := l.invoke(gctx, call)
			if err != nil {
				return err
			}
			results[i] = domain.ToolResult{CallID: call.ID, Name: call.Name, Input: call.Input, Output: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// invoke dispatches a single call. A name the registry does not know is fed
// back to the model as an error payload rather than failing the turn, since
// the model can recover by picking a real tool.
func (l *Loop) invoke(ctx context.Context, call domain.ToolCall) (out []byte, err error) {
	tool, ok := l.registry.Get(call.Name)
	if !ok {
		l.logger.WarnContext(ctx, "model requested unknown tool", slog.String("tool", call.Name))
		return fmt.Appendf(nil, `{"error":"Unknown tool: %s"}`, call.Name), nil
	}

	l.logger.InfoContext(ctx, "executing tool", slog.String("tool", call.Name))
	out, err = tool.Call(ctx, call.Input)
	if err != nil {
		return nil, &domain.ToolExecutionError{Tool: call.Name, Err: err}
	}
	return out, nil
}

// compose makes the final model call under the given binding, streaming text
// tokens to the emitter as they arrive.
func (l *Loop) compose(ctx context.Context, state *AgentState, binding domain.Binding, em *Emitter) (*Result, error) {
	var onToken func(string)
	if em != nil {
		onToken = func(text string) {
			em.Emit(ctx, domain.TokenEvent(text))
		}
	}

	reply, err := l.model.Converse(ctx, domain.ModelRequest{
		Binding:  binding,
		System:   l.system,
		Messages: state.Messages,
		OnToken:  onToken,
	})
	if err != nil {
		return nil, &domain.ModelInvocationError{Binding: binding, Err: err}
	}
	return &Result{Answer: reply.Text, Steps: state.Steps}, nil
}

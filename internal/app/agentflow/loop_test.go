package agentflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyant-travel/voyant-agent/internal/adapters/llm"
	"github.com/voyant-travel/voyant-agent/internal/app/tools"
	"github.com/voyant-travel/voyant-agent/internal/domain"
	"github.com/voyant-travel/voyant-agent/internal/kb"
)

func newTestLoop(t *testing.T, model domain.ModelClient) *Loop {
	t.Helper()
	base, err := kb.Load(0)
	require.NoError(t, err)
	registry := tools.NewDefaultRegistry(base)
	return NewLoop(model, registry, NewRouter(nil, 0), "test system prompt", nil)
}

func TestRunCatalogueQuestion(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(llm.Call("c1", tools.NameListDestinations, `{}`)),
		llm.TextReply("We cover Tokyo, Kyoto, Bali and more."),
	)
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "what destinations do you have?", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "We cover Tokyo, Kyoto, Bali and more.", res.Answer)
	require.Len(t, res.Steps, 1)
	require.Equal(t, tools.NameListDestinations, res.Steps[0].Tool)

	// One planning call, then the terminal compose call without tools.
	require.Len(t, mock.Requests, 2)
	require.Equal(t, domain.BindingPlan, mock.Requests[0].Binding)
	require.Equal(t, domain.BindingFree, mock.Requests[1].Binding)
}

func TestRunFullPlanFlow(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(llm.Call("c1", tools.NameSearchDestinations, `{"interests":["culture"],"country":"Japan"}`)),
		llm.ToolCallReply(llm.Call("c2", tools.NameEstimateBudget, `{"destination_id":"tokyo","days":5}`)),
		llm.ToolCallReply(llm.Call("c3", tools.NameGetActivities, `{"destination_id":"tokyo","interests":["culture"],"days":5}`)),
		llm.ToolCallReply(llm.Call("c4", tools.NameBuildItinerary, `{"destination_id":"tokyo","days":5,"interests":["culture"]}`)),
		llm.TextReply("Here is your 5-day Tokyo plan."),
	)
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "plan me 5 days in Tokyo", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Here is your 5-day Tokyo plan.", res.Answer)
	require.Len(t, res.Steps, 4)
	require.Equal(t, tools.NameBuildItinerary, res.Steps[3].Tool)
	require.Len(t, mock.Requests, 5)
}

func TestRunComparisonStopsAfterTwoSearches(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(
			llm.Call("c1", tools.NameSearchDestinations, `{"country":"Japan"}`),
			llm.Call("c2", tools.NameSearchDestinations, `{"country":"Thailand"}`),
		),
		llm.TextReply("Tokyo suits culture, Bangkok suits budget food."),
	)
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "tokyo or bangkok?", nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Steps, 2)
	require.Len(t, mock.Requests, 2)
}

func TestRunSafetyCapStopsRunawayTurn(t *testing.T) {
	activities := llm.Call("c", tools.NameGetActivities, `{"destination_id":"tokyo","interests":[]}`)
	mock := llm.NewMockModel(
		llm.ToolCallReply(activities),
		llm.ToolCallReply(activities),
		llm.ToolCallReply(activities),
		llm.ToolCallReply(activities),
		llm.ToolCallReply(activities),
		llm.TextReply("Here is what I found."),
	)
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "keep digging", nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Steps, 5)
	// Five planning cycles plus the forced compose call.
	require.Len(t, mock.Requests, 6)
	require.Equal(t, domain.BindingFree, mock.Requests[5].Binding)
}

func TestRunUnknownToolFeedsErrorBack(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(llm.Call("c1", "teleport", `{}`)),
		llm.TextReply("I can't teleport, but I can plan."),
	)
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "teleport me to Tokyo", nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	require.Contains(t, string(res.Steps[0].Output), "Unknown tool: teleport")
}

func TestRunToolFailureFailsTurn(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(llm.Call("c1", tools.NameEstimateBudget, `not json`)),
	)
	loop := newTestLoop(t, mock)

	_, err := loop.Run(context.Background(), "plan me a trip", nil, nil)
	var toolErr *domain.ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, tools.NameEstimateBudget, toolErr.Tool)
}

func TestRunModelFailureFailsTurn(t *testing.T) {
	loop := newTestLoop(t, failingModel{})

	_, err := loop.Run(context.Background(), "plan me a trip", nil, nil)
	var modelErr *domain.ModelInvocationError
	require.ErrorAs(t, err, &modelErr)
	require.Equal(t, domain.BindingPlan, modelErr.Binding)
}

func TestRunPlainTextReplyEndsTurn(t *testing.T) {
	mock := llm.NewMockModel(llm.TextReply("Just tell me where you want to go!"))
	loop := newTestLoop(t, mock)

	res, err := loop.Run(context.Background(), "hello", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Just tell me where you want to go!", res.Answer)
	require.Empty(t, res.Steps)
}

func TestRunEventOrdering(t *testing.T) {
	mock := llm.NewMockModel(
		llm.ToolCallReply(
			llm.Call("c1", tools.NameSearchDestinations, `{"country":"Indonesia"}`),
			llm.Call("c2", tools.NameEstimateBudget, `{"destination_id":"bali","days":5}`),
		),
		llm.TextReply("Yes, 5 days in Bali fits your budget."),
	)
	loop := newTestLoop(t, mock)

	em := NewEmitter(64)
	res, err := loop.Run(context.Background(), "how much is 5 days in Bali?", nil, em)
	require.NoError(t, err)
	require.NotEmpty(t, res.Answer)
	em.Close()

	var events []domain.StreamEvent
	for ev := range em.Events() {
		events = append(events, ev)
	}

	types := make([]domain.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	require.Equal(t, []domain.EventType{
		domain.EventToolStart,
		domain.EventToolStart,
		domain.EventToolEnd,
		domain.EventToolEnd,
		domain.EventToken,
	}, types)

	// Ends arrive in request order regardless of execution order.
	require.Equal(t, tools.NameSearchDestinations, events[2].Tool)
	require.Equal(t, tools.NameEstimateBudget, events[3].Tool)
	require.True(t, strings.Contains(events[4].Text, "Bali"))
}

type failingModel struct{}

func (failingModel) Converse(context.Context, domain.ModelRequest) (*domain.ModelReply, error) {
	return nil, errors.New("model unavailable")
}

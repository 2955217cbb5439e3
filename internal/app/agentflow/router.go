package agentflow

import (
	"strings"

	"github.com/voyant-travel/voyant-agent/internal/app/tools"
	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// DefaultMaxToolResults is the safety cap on tool-result messages per turn.
const DefaultMaxToolResults = 5

// DefaultFeasibilityKeywords is the lexicon for spotting budget-feasibility
// questions ("can I do this for under A$3,000?"). Overridable via config.
var DefaultFeasibilityKeywords = []string{
	"can i", "how much", "afford", "under a$", "within my budget",
	"is it possible", "enough for", "feasible", "fit in my", "fit within",
}

// Decision is the router's output for one cycle: which binding to invoke
// next, and whether the turn keeps cycling. Continue == false means the next
// model call composes the final answer.
type Decision struct {
	Binding  domain.Binding
	Continue bool
}

var (
	compose   = Decision{Binding: domain.BindingFree, Continue: false}
	keepGoing = Decision{Binding: domain.BindingPlan, Continue: true}
)

// Router classifies intent from the turn's accumulated tool history and the
// raw user message. It is a pure function of AgentState: same state, same
// decision.
type Router struct {
	feasibilityKeywords []string
	maxToolResults      int
}

func NewRouter(feasibilityKeywords []string, maxToolResults int) *Router {
	if len(feasibilityKeywords) == 0 {
		feasibilityKeywords = DefaultFeasibilityKeywords
	}
	if maxToolResults <= 0 {
		maxToolResults = DefaultMaxToolResults
	}
	return &Router{feasibilityKeywords: feasibilityKeywords, maxToolResults: maxToolResults}
}

// rule is one row of the decision table. Rows are evaluated top-down and the
// first match wins.
type rule struct {
	name  string
	match func(*Router, *AgentState) bool
	then  Decision
}

var ruleTable = []rule{
	{
		// All planning tools done once build_itinerary has run; compose the plan.
		name: "itinerary built",
		match: func(_ *Router, s *AgentState) bool {
			return s.InvokedCount(tools.NameBuildItinerary) > 0
		},
		then: compose,
	},
	{
		// Non-travel or catalogue question: only the list tool fired.
		name: "list only",
		match: func(_ *Router, s *AgentState) bool {
			n := s.InvokedCount(tools.NameListDestinations)
			return n > 0 && n == s.ToolResultCount()
		},
		then: compose,
	},
	{
		// Two destination lookups and no budget call is a comparison query.
		name: "comparison",
		match: func(_ *Router, s *AgentState) bool {
			return s.InvokedCount(tools.NameSearchDestinations) >= 2 &&
				s.InvokedCount(tools.NameEstimateBudget) == 0
		},
		then: compose,
	},
	{
		// Feasibility question answered as soon as the budget estimate is in.
		name: "feasibility answered",
		match: func(r *Router, s *AgentState) bool {
			return s.InvokedCount(tools.NameEstimateBudget) > 0 && r.isFeasibility(s.UserText())
		},
		then: compose,
	},
	{
		// Budget done but a full plan still needs activities and an itinerary.
		name: "continue toward plan",
		match: func(_ *Router, s *AgentState) bool {
			return s.InvokedCount(tools.NameEstimateBudget) > 0
		},
		then: keepGoing,
	},
}

// Decide evaluates the rule table top-down, first match wins, then applies
// the safety cap: once the state holds maxToolResults tool-result messages
// the turn terminates no matter what the matched row said. The cap is the
// loop's single liveness guarantee.
func (r *Router) Decide(s *AgentState) Decision {
	d := keepGoing
	for _, row := range ruleTable {
		if row.match(r, s) {
			d = row.then
			break
		}
	}
	if s.ToolResultCount() >= r.maxToolResults {
		return compose
	}
	return d
}

func (r *Router) isFeasibility(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range r.feasibilityKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

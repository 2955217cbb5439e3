package tools

import "github.com/voyant-travel/voyant-agent/internal/kb"

// NewDefaultRegistry wires the full trip-planning tool set over the given
// knowledge base.
func NewDefaultRegistry(base *kb.KB) *Registry {
	return NewRegistry(
		NewSearchDestinations(base),
		NewGetActivities(base),
		NewEstimateBudget(base),
		NewBuildItinerary(base),
		NewListDestinations(base),
	)
}

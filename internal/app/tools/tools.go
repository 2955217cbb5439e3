// Package tools defines the fixed set of data-lookup operations the model can
// invoke, and the registry the model binding advertises them through.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Canonical tool names. The intent router matches on these.
const (
	NameSearchDestinations = "search_destinations"
	NameGetActivities      = "get_activities"
	NameEstimateBudget     = "estimate_budget"
	NameBuildItinerary     = "build_itinerary"
	NameListDestinations   = "list_available_destinations"
)

// Tool is a deterministic structured-input/structured-output lookup. Domain
// misses (unknown destination, no matches) are reported inside the output
// JSON, not as Go errors; an error return means the call itself failed.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Registry is the fixed, ordered set of tools declared to the model under the
// plan binding.
type Registry struct {
	order  []string
	byName map[string]Tool
}

func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		if _, dup := r.byName[t.Name()]; dup {
			continue
		}
		r.order = append(r.order, t.Name())
		r.byName[t.Name()] = t
	}
	return r
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns the tools in registration order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// mustSchema derives a JSON schema for a tool's argument struct. Panics on
// unserializable types, which is a programming error caught at startup.
func mustSchema(v any) json.RawMessage {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(v)
	s.Version = ""
	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("tools: reflecting schema for %T: %v", v, err))
	}
	return b
}

func errorResult(format string, args ...any) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return b
}

func marshalResult(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling tool result: %w", err)
	}
	return b, nil
}

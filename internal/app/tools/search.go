package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

type searchArgs struct {
	Interests   []string `json:"interests" jsonschema:"description=Categories the user enjoys such as culture / food / adventure / nature / nightlife / shopping / relaxation"`
	BudgetLevel string   `json:"budget_level,omitempty" jsonschema:"description=Spending preference: budget / mid-range / luxury"`
	Season      string   `json:"season,omitempty" jsonschema:"description=Travel window: spring / summer / autumn / winter"`
	Region      string   `json:"region,omitempty" jsonschema:"description=Geographic area such as Asia or Europe"`
	Country     string   `json:"country,omitempty" jsonschema:"description=Country name filter such as Japan or Thailand"`
}

// SearchDestinations scores the knowledge base against the user's preferences.
// The prompt instructs the model to call it first for any planning request.
type SearchDestinations struct {
	kb     *kb.KB
	schema json.RawMessage
}

func NewSearchDestinations(base *kb.KB) *SearchDestinations {
	return &SearchDestinations{kb: base, schema: mustSchema(&searchArgs{})}
}

func (t *SearchDestinations) Name() string { return NameSearchDestinations }

func (t *SearchDestinations) Description() string {
	return "Search the knowledge base for destinations matching the user's interests, " +
		"budget level, season, region or country. Returns up to 5 scored matches with " +
		"AUD costs, best seasons and visa notes."
}

func (t *SearchDestinations) InputSchema() json.RawMessage { return t.schema }

func (t *SearchDestinations) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args searchArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid search_destinations input: %w", err)
	}

	results := t.kb.Search(kb.SearchParams{
		Interests:   args.Interests,
		BudgetLevel: args.BudgetLevel,
		Season:      args.Season,
		Region:      args.Region,
		Country:     args.Country,
	})
	if len(results) == 0 {
		return errorResult("No destinations matched. Try broader interests or remove filters."), nil
	}
	return marshalResult(results)
}

package tools

import (
	"context"
	"encoding/json"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

type listArgs struct{}

type destinationSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	BudgetLevel string `json:"budget_level"`
	Description string `json:"description"`
}

// ListDestinations returns the whole catalogue in summary form. The prompt
// also uses it as the lightweight always-safe call for non-travel messages.
type ListDestinations struct {
	kb     *kb.KB
	schema json.RawMessage
}

func NewListDestinations(base *kb.KB) *ListDestinations {
	return &ListDestinations{kb: base, schema: mustSchema(&listArgs{})}
}

func (t *ListDestinations) Name() string { return NameListDestinations }

func (t *ListDestinations) Description() string {
	return "Return all destinations in the knowledge base. Use when the user asks what " +
		"destinations are available, or when a destination is not found."
}

func (t *ListDestinations) InputSchema() json.RawMessage { return t.schema }

func (t *ListDestinations) Call(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	all := t.kb.All()
	out := make([]destinationSummary, 0, len(all))
	for _, d := range all {
		out = append(out, destinationSummary{
			ID:          d.ID,
			Name:        d.Name,
			Country:     d.Country,
			Region:      d.Region,
			BudgetLevel: d.BudgetLevel,
			Description: truncateDescription(d.Description, summaryDescriptionLimit),
		})
	}
	return marshalResult(out)
}

const summaryDescriptionLimit = 120

// truncateDescription cuts on rune boundaries so a multibyte character is
// never split mid-sequence.
func truncateDescription(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

type activitiesArgs struct {
	DestinationID string   `json:"destination_id" jsonschema:"description=The id from a search_destinations result such as tokyo"`
	Interests     []string `json:"interests" jsonschema:"description=Categories to prioritise; same values as search_destinations"`
	Days          int      `json:"days,omitempty" jsonschema:"description=Trip length; controls how many activities are returned (about 3 per day)"`
}

// GetActivities returns curated things to do, interest-matched first. Meant to
// run after search_destinations and before build_itinerary.
type GetActivities struct {
	kb     *kb.KB
	schema json.RawMessage
}

func NewGetActivities(base *kb.KB) *GetActivities {
	return &GetActivities{kb: base, schema: mustSchema(&activitiesArgs{})}
}

func (t *GetActivities) Name() string { return NameGetActivities }

func (t *GetActivities) Description() string {
	return "Retrieve curated activities for a destination, prioritised by the user's " +
		"interests. Call after search_destinations and before build_itinerary."
}

func (t *GetActivities) InputSchema() json.RawMessage { return t.schema }

func (t *GetActivities) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args activitiesArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid get_activities input: %w", err)
	}
	if args.Days <= 0 {
		args.Days = 3
	}

	activities := t.kb.Activities(args.DestinationID, args.Interests, args.Days*3)
	if len(activities) == 0 {
		return errorResult("No activities found for %q.", args.DestinationID), nil
	}
	return marshalResult(activities)
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

type itineraryArgs struct {
	DestinationID string   `json:"destination_id" jsonschema:"description=The id from a search_destinations result"`
	Days          int      `json:"days" jsonschema:"description=Number of days in the itinerary"`
	Interests     []string `json:"interests" jsonschema:"description=Categories to prioritise when selecting activities"`
	TravelStyle   string   `json:"travel_style,omitempty" jsonschema:"description=Spending level: budget / mid-range / luxury"`
}

type itineraryDay struct {
	DayNumber int      `json:"day_number"`
	Theme     string   `json:"theme"`
	Morning   string   `json:"morning"`
	Afternoon string   `json:"afternoon"`
	Evening   string   `json:"evening"`
	Tips      []string `json:"tips"`
}

type practicalInfo struct {
	VisaNotes   string   `json:"visa_notes"`
	Language    string   `json:"language"`
	Currency    string   `json:"currency"`
	BestSeasons []string `json:"best_seasons"`
}

type itineraryResult struct {
	Destination   string         `json:"destination"`
	Country       string         `json:"country"`
	DaysTotal     int            `json:"days_total"`
	TravelStyle   string         `json:"travel_style"`
	Itinerary     []itineraryDay `json:"itinerary"`
	PracticalInfo practicalInfo  `json:"practical_info"`
}

// BuildItinerary generates the day-by-day schedule, rotating through the
// destination's activity list across morning/afternoon/evening slots. Meant to
// run last; the router composes the final plan once it has executed.
type BuildItinerary struct {
	kb     *kb.KB
	schema json.RawMessage
}

func NewBuildItinerary(base *kb.KB) *BuildItinerary {
	return &BuildItinerary{kb: base, schema: mustSchema(&itineraryArgs{})}
}

func (t *BuildItinerary) Name() string { return NameBuildItinerary }

func (t *BuildItinerary) Description() string {
	return "Build a structured day-by-day itinerary with morning, afternoon and evening " +
		"activities. Call last, after search_destinations, estimate_budget and get_activities."
}

func (t *BuildItinerary) InputSchema() json.RawMessage { return t.schema }

func (t *BuildItinerary) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args itineraryArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid build_itinerary input: %w", err)
	}
	if args.Days <= 0 {
		return errorResult("days must be at least 1."), nil
	}

	dest, ok := t.kb.ByID(args.DestinationID)
	if !ok {
		return errorResult("Destination %q not found.", args.DestinationID), nil
	}

	style := args.TravelStyle
	if _, known := styleMultiplier[style]; !known {
		style = "mid-range"
	}

	activities := t.kb.Activities(args.DestinationID, args.Interests, 0)

	tips := dest.Tips
	if len(tips) > 2 {
		tips = tips[:2]
	}

	days := make([]itineraryDay, 0, args.Days)
	for day := 1; day <= args.Days; day++ {
		slots := make([]string, 3)
		for i := range slots {
			if len(activities) == 0 {
				slots[i] = "Free time to explore the local area"
				continue
			}
			act := activities[((day-1)*3+i)%len(activities)]
			cost := math.Round(act.CostUSD * t.kb.USDToAUD())
			slots[i] = fmt.Sprintf("%s (%s, ~%gh, A$%.0f)", act.Name, act.Category, act.DurationHours, cost)
		}

		theme := "Exploration"
		if len(activities) > 0 {
			first := activities[((day-1)*3)%len(activities)]
			theme = titleCase(first.Category)
		}

		days = append(days, itineraryDay{
			DayNumber: day,
			Theme:     theme,
			Morning:   slots[0],
			Afternoon: slots[1],
			Evening:   slots[2],
			Tips:      tips,
		})
	}

	return marshalResult(itineraryResult{
		Destination: dest.Name,
		Country:     dest.Country,
		DaysTotal:   args.Days,
		TravelStyle: style,
		Itinerary:   days,
		PracticalInfo: practicalInfo{
			VisaNotes:   dest.VisaNotes,
			Language:    dest.Language,
			Currency:    dest.Currency,
			BestSeasons: dest.BestSeasons,
		},
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

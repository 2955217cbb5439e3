package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

var styleMultiplier = map[string]float64{
	"budget":    0.7,
	"mid-range": 1.0,
	"luxury":    1.5,
}

type budgetArgs struct {
	DestinationID string `json:"destination_id" jsonschema:"description=The id from a search_destinations result"`
	Days          int    `json:"days" jsonschema:"description=Number of in-destination days excluding travel days"`
	TravelStyle   string `json:"travel_style,omitempty" jsonschema:"description=Spending level: budget / mid-range / luxury"`
}

type budgetBreakdown struct {
	Destination      string  `json:"destination"`
	Days             int     `json:"days"`
	TravelStyle      string  `json:"travel_style"`
	FlightsAUD       float64 `json:"flights_aud"`
	AccommodationAUD float64 `json:"accommodation_aud"`
	FoodAUD          float64 `json:"food_aud"`
	ActivitiesAUD    float64 `json:"activities_aud"`
	TransportAUD     float64 `json:"transport_aud"`
	TotalAUD         float64 `json:"total_aud"`
	DailyAvgAUD      float64 `json:"daily_avg_aud"`
	Currency         string  `json:"currency"`
}

// EstimateBudget produces the AUD cost breakdown every price in a final plan
// must come from. Also answers budget-feasibility questions directly.
type EstimateBudget struct {
	kb     *kb.KB
	schema json.RawMessage
}

func NewEstimateBudget(base *kb.KB) *EstimateBudget {
	return &EstimateBudget{kb: base, schema: mustSchema(&budgetArgs{})}
}

func (t *EstimateBudget) Name() string { return NameEstimateBudget }

func (t *EstimateBudget) Description() string {
	return "Estimate the total AUD cost for a trip: flights, accommodation, food, " +
		"activities and local transport. Call before build_itinerary, and whenever the " +
		"user asks whether their budget is achievable."
}

func (t *EstimateBudget) InputSchema() json.RawMessage { return t.schema }

func (t *EstimateBudget) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	var args budgetArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid estimate_budget input: %w", err)
	}
	if args.Days <= 0 {
		return errorResult("days must be at least 1."), nil
	}

	dest, ok := t.kb.ByID(args.DestinationID)
	if !ok {
		return errorResult("Destination %q not found.", args.DestinationID), nil
	}

	style := args.TravelStyle
	mult, ok := styleMultiplier[style]
	if !ok {
		style, mult = "mid-range", 1.0
	}

	days := float64(args.Days)
	dailyBase := dest.AvgDailyCostUSD * mult * t.kb.USDToAUD()

	accommodation := round2(dailyBase * 0.40 * days)
	food := round2(dailyBase * 0.30 * days)
	transport := round2(dailyBase * 0.15 * days)
	activities := round2(dailyBase * 0.15 * days)
	flights := round2(dest.AvgFlightCostUSD * t.kb.USDToAUD())
	total := round2(flights + accommodation + food + transport + activities)

	return marshalResult(budgetBreakdown{
		Destination:      dest.Name,
		Days:             args.Days,
		TravelStyle:      style,
		FlightsAUD:       flights,
		AccommodationAUD: accommodation,
		FoodAUD:          food,
		ActivitiesAUD:    activities,
		TransportAUD:     transport,
		TotalAUD:         total,
		DailyAvgAUD:      round2((total - flights) / days),
		Currency:         "AUD",
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

func testKB(t *testing.T) *kb.KB {
	t.Helper()
	base, err := kb.Load(1.55)
	require.NoError(t, err)
	return base
}

func TestEstimateBudgetMidRange(t *testing.T) {
	tool := NewEstimateBudget(testKB(t))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"destination_id":"tokyo","days":5,"travel_style":"mid-range"}`))
	require.NoError(t, err)

	var b budgetBreakdown
	require.NoError(t, json.Unmarshal(out, &b))

	// Tokyo: 120 USD/day, 650 USD flights, rate 1.55.
	require.Equal(t, "Tokyo", b.Destination)
	require.Equal(t, 5, b.Days)
	require.Equal(t, "mid-range", b.TravelStyle)
	require.InDelta(t, 1007.50, b.FlightsAUD, 0.01)
	require.InDelta(t, 372.00, b.AccommodationAUD, 0.01)
	require.InDelta(t, 279.00, b.FoodAUD, 0.01)
	require.InDelta(t, 139.50, b.TransportAUD, 0.01)
	require.InDelta(t, 139.50, b.ActivitiesAUD, 0.01)
	require.InDelta(t, 1937.50, b.TotalAUD, 0.01)
	require.InDelta(t, 186.00, b.DailyAvgAUD, 0.01)
	require.Equal(t, "AUD", b.Currency)
}

func TestEstimateBudgetStyleMultipliers(t *testing.T) {
	tool := NewEstimateBudget(testKB(t))

	cases := []struct {
		style string
		total float64
	}{
		{"budget", 1007.50 + 930.00*0.7},
		{"luxury", 1007.50 + 930.00*1.5},
	}
	for _, tc := range cases {
		t.Run(tc.style, func(t *testing.T) {
			out, err := tool.Call(context.Background(), json.RawMessage(
				`{"destination_id":"tokyo","days":5,"travel_style":"`+tc.style+`"}`))
			require.NoError(t, err)

			var b budgetBreakdown
			require.NoError(t, json.Unmarshal(out, &b))
			require.InDelta(t, tc.total, b.TotalAUD, 0.01)
		})
	}
}

func TestEstimateBudgetUnknownStyleFallsBack(t *testing.T) {
	tool := NewEstimateBudget(testKB(t))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"destination_id":"tokyo","days":3,"travel_style":"lavish"}`))
	require.NoError(t, err)

	var b budgetBreakdown
	require.NoError(t, json.Unmarshal(out, &b))
	require.Equal(t, "mid-range", b.TravelStyle)
}

func TestEstimateBudgetDomainErrors(t *testing.T) {
	tool := NewEstimateBudget(testKB(t))

	cases := []struct {
		name  string
		input string
	}{
		{"unknown destination", `{"destination_id":"atlantis","days":5}`},
		{"zero days", `{"destination_id":"tokyo","days":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tool.Call(context.Background(), json.RawMessage(tc.input))
			require.NoError(t, err)

			var res map[string]string
			require.NoError(t, json.Unmarshal(out, &res))
			require.Contains(t, res, "error")
		})
	}
}

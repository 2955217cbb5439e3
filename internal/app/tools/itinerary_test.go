package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildItineraryShape(t *testing.T) {
	tool := NewBuildItinerary(testKB(t))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"destination_id":"tokyo","days":3,"interests":["culture","food"]}`))
	require.NoError(t, err)

	var res itineraryResult
	require.NoError(t, json.Unmarshal(out, &res))

	require.Equal(t, "Tokyo", res.Destination)
	require.Equal(t, "Japan", res.Country)
	require.Equal(t, 3, res.DaysTotal)
	require.Len(t, res.Itinerary, 3)

	for i, day := range res.Itinerary {
		require.Equal(t, i+1, day.DayNumber)
		require.NotEmpty(t, day.Theme)
		require.NotEmpty(t, day.Morning)
		require.NotEmpty(t, day.Afternoon)
		require.NotEmpty(t, day.Evening)
		require.LessOrEqual(t, len(day.Tips), 2)
	}

	require.NotEmpty(t, res.PracticalInfo.VisaNotes)
	require.Equal(t, "JPY", res.PracticalInfo.Currency)
	require.Equal(t, "Japanese", res.PracticalInfo.Language)
}

// Tokyo has six activities, so a two-day itinerary rotates through all of
// them without repeats.
func TestBuildItineraryRotatesActivities(t *testing.T) {
	tool := NewBuildItinerary(testKB(t))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"destination_id":"tokyo","days":2,"interests":[]}`))
	require.NoError(t, err)

	var res itineraryResult
	require.NoError(t, json.Unmarshal(out, &res))

	seen := map[string]bool{}
	for _, day := range res.Itinerary {
		for _, slot := range []string{day.Morning, day.Afternoon, day.Evening} {
			require.False(t, seen[slot], "slot repeated: %s", slot)
			seen[slot] = true
		}
	}
	require.Len(t, seen, 6)
}

func TestBuildItineraryUnknownDestination(t *testing.T) {
	tool := NewBuildItinerary(testKB(t))

	out, err := tool.Call(context.Background(), json.RawMessage(
		`{"destination_id":"atlantis","days":3,"interests":[]}`))
	require.NoError(t, err)

	var res map[string]string
	require.NoError(t, json.Unmarshal(out, &res))
	require.Contains(t, res, "error")
}

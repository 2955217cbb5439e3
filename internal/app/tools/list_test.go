package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/voyant-travel/voyant-agent/internal/kb"
)

func TestTruncateDescriptionRuneBoundary(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short stays whole", "old town", 120, "old town"},
		{"ascii truncates with ellipsis", strings.Repeat("a", 10), 4, "aaaa..."},
		{"multibyte counts runes not bytes", "カフェ通りの古い町並み", 5, "カフェ通り..."},
		{"exact limit stays whole", "東京タワー", 5, "東京タワー"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateDescription(tc.in, tc.limit)
			require.Equal(t, tc.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}
}

func TestListDestinationsSummaries(t *testing.T) {
	base, err := kb.Load(0)
	require.NoError(t, err)

	out, err := NewListDestinations(base).Call(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	var summaries []destinationSummary
	require.NoError(t, json.Unmarshal(out, &summaries))
	require.Len(t, summaries, len(base.All()))

	for _, s := range summaries {
		require.NotEmpty(t, s.ID)
		require.True(t, utf8.ValidString(s.Description))
		require.LessOrEqual(t, len([]rune(strings.TrimSuffix(s.Description, "..."))), summaryDescriptionLimit)
	}
}

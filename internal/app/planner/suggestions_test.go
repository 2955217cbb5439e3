package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSuggestions(t *testing.T) {
	cases := []struct {
		name     string
		answer   string
		want     string
		wantSugs []string
	}{
		{
			name:     "tag at the end",
			answer:   "Tokyo is great in spring.\n<suggestions>[\"How much for 5 days?\", \"What about Kyoto?\"]</suggestions>",
			want:     "Tokyo is great in spring.",
			wantSugs: []string{"How much for 5 days?", "What about Kyoto?"},
		},
		{
			name:   "no tag",
			answer: "Tokyo is great in spring.",
			want:   "Tokyo is great in spring.",
		},
		{
			name:   "malformed array keeps text intact",
			answer: "Answer.\n<suggestions>[not json]</suggestions>",
			want:   "Answer.\n<suggestions>[not json]</suggestions>",
		},
		{
			name:     "tag spanning lines",
			answer:   "Answer.\n<suggestions>\n[\"One\",\n \"Two\"]\n</suggestions>",
			want:     "Answer.",
			wantSugs: []string{"One", "Two"},
		},
		{
			name:     "blank entries dropped",
			answer:   "Answer. <suggestions>[\"Keep\", \"  \"]</suggestions>",
			want:     "Answer.",
			wantSugs: []string{"Keep"},
		},
		{
			name:   "empty input",
			answer: "",
			want:   "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean, sugs := ExtractSuggestions(tc.answer)
			require.Equal(t, tc.want, clean)
			require.Equal(t, tc.wantSugs, sugs)
		})
	}
}

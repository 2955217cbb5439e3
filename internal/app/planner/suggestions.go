package planner

import (
	"encoding/json"
	"regexp"
	"strings"
)

var suggestionsTag = regexp.MustCompile(`(?s)<suggestions>\s*(\[.*?\])\s*</suggestions>`)

// ExtractSuggestions splits an answer into its display text and the follow-up
// suggestions the prompt asks the model to append inside a <suggestions> tag.
// A missing or malformed tag yields the text untouched and no suggestions.
func ExtractSuggestions(answer string) (clean string, suggestions []string) {
	m := suggestionsTag.FindStringSubmatchIndex(answer)
	if m == nil {
		return strings.TrimSpace(answer), nil
	}

	var parsed []string
	if err := json.Unmarshal([]byte(answer[m[2]:m[3]]), &parsed); err != nil {
		return strings.TrimSpace(answer), nil
	}

	clean = strings.TrimSpace(answer[:m[0]] + answer[m[1]:])
	for _, s := range parsed {
		if s = strings.TrimSpace(s); s != "" {
			suggestions = append(suggestions, s)
		}
	}
	return clean, suggestions
}

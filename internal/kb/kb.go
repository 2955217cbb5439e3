// Package kb holds the curated destination knowledge base the lookup tools
// query. The data ships embedded in the binary; the agent is prompted to treat
// it as the only world that exists.
package kb

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

//go:embed destinations.json
var destinationsJSON []byte

// DefaultUSDToAUD is the conversion rate applied when none is configured.
const DefaultUSDToAUD = 1.55

type Activity struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	DurationHours float64 `json:"duration_hours"`
	CostUSD       float64 `json:"cost_usd"`
	Description   string  `json:"description"`
}

type Destination struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Country          string     `json:"country"`
	Region           string     `json:"region"`
	Description      string     `json:"description"`
	BudgetLevel      string     `json:"budget_level"`
	AvgDailyCostUSD  float64    `json:"avg_daily_cost_usd"`
	AvgFlightCostUSD float64    `json:"avg_flight_cost_usd"`
	BestSeasons      []string   `json:"best_seasons"`
	VisaNotes        string     `json:"visa_notes"`
	Language         string     `json:"language"`
	Currency         string     `json:"currency"`
	Tips             []string   `json:"tips"`
	Activities       []Activity `json:"activities"`
}

// SearchResult is the client-facing projection of a destination, with costs
// converted to AUD.
type SearchResult struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Country          string   `json:"country"`
	Region           string   `json:"region"`
	Description      string   `json:"description"`
	BudgetLevel      string   `json:"budget_level"`
	AvgDailyCostAUD  float64  `json:"avg_daily_cost_aud"`
	AvgFlightCostAUD float64  `json:"avg_flight_cost_aud"`
	BestSeasons      []string `json:"best_seasons"`
	VisaNotes        string   `json:"visa_notes"`
	Score            int      `json:"score"`
}

type SearchParams struct {
	Interests   []string
	BudgetLevel string
	Season      string
	Region      string
	Country     string
	TopN        int
}

var budgetRank = map[string]int{"budget": 1, "mid-range": 2, "luxury": 3}

type KB struct {
	destinations []Destination
	usdToAUD     float64
}

// Load parses the embedded catalogue. rate <= 0 falls back to DefaultUSDToAUD.
func Load(rate float64) (*KB, error) {
	var dests []Destination
	if err := json.Unmarshal(destinationsJSON, &dests); err != nil {
		return nil, fmt.Errorf("parsing embedded destinations: %w", err)
	}
	if rate <= 0 {
		rate = DefaultUSDToAUD
	}
	return &KB{destinations: dests, usdToAUD: rate}, nil
}

func (k *KB) USDToAUD() float64 { return k.usdToAUD }

// Search scores every destination against the given preferences and returns
// the top matches. A country filter guarantees a minimum score of 1 so a
// valid city never vanishes because its activity categories missed.
func (k *KB) Search(p SearchParams) []SearchResult {
	if p.TopN <= 0 {
		p.TopN = 5
	}

	interests := make(map[string]bool, len(p.Interests))
	for _, i := range p.Interests {
		interests[strings.ToLower(i)] = true
	}

	type scored struct {
		score int
		dest  *Destination
	}
	var matches []scored

	for i := range k.destinations {
		d := &k.destinations[i]
		if p.Country != "" && !strings.EqualFold(d.Country, p.Country) {
			continue
		}

		score := 0

		seen := map[string]bool{}
		for _, a := range d.Activities {
			if interests[a.Category] && !seen[a.Category] {
				score += 2
				seen[a.Category] = true
			}
		}

		if p.BudgetLevel != "" {
			diff := budgetRank[d.BudgetLevel] - budgetRank[p.BudgetLevel]
			switch {
			case diff == 0:
				score += 2
			case diff == 1 || diff == -1:
				score++
			}
		}

		if p.Season != "" {
			for _, s := range d.BestSeasons {
				if strings.EqualFold(s, p.Season) {
					score += 2
					break
				}
			}
		}

		if p.Region != "" && strings.EqualFold(d.Region, p.Region) {
			score++
		}

		if score == 0 && p.Country != "" {
			score = 1
		}
		if score > 0 {
			matches = append(matches, scored{score, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > p.TopN {
		matches = matches[:p.TopN]
	}

	out := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		out = append(out, SearchResult{
			ID:               m.dest.ID,
			Name:             m.dest.Name,
			Country:          m.dest.Country,
			Region:           m.dest.Region,
			Description:      m.dest.Description,
			BudgetLevel:      m.dest.BudgetLevel,
			AvgDailyCostAUD:  math.Round(m.dest.AvgDailyCostUSD * k.usdToAUD),
			AvgFlightCostAUD: math.Round(m.dest.AvgFlightCostUSD * k.usdToAUD),
			BestSeasons:      m.dest.BestSeasons,
			VisaNotes:        m.dest.VisaNotes,
			Score:            m.score,
		})
	}
	return out
}

// Activities returns up to max activities for a destination, interest-matched
// ones first, preserving catalogue order within each group.
func (k *KB) Activities(destinationID string, interests []string, max int) []Activity {
	d, ok := k.ByID(destinationID)
	if !ok {
		return nil
	}

	set := make(map[string]bool, len(interests))
	for _, i := range interests {
		set[strings.ToLower(i)] = true
	}

	var matched, others []Activity
	for _, a := range d.Activities {
		if set[a.Category] {
			matched = append(matched, a)
		} else {
			others = append(others, a)
		}
	}

	all := append(matched, others...)
	if max > 0 && len(all) > max {
		all = all[:max]
	}
	return all
}

func (k *KB) ByID(id string) (*Destination, bool) {
	for i := range k.destinations {
		if k.destinations[i].ID == id {
			return &k.destinations[i], true
		}
	}
	return nil, false
}

func (k *KB) All() []Destination {
	return append([]Destination(nil), k.destinations...)
}

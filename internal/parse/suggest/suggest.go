// Package suggest proposes catalog entries for phrases the parser could not
// match, so the measurer can resolve them with a tap instead of retyping.
package suggest

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

const (
	// minScore is the Jaro-Winkler similarity below which a candidate is
	// considered noise.
	minScore = 0.8

	// maxCandidates caps how many candidates one unknown phrase gets.
	maxCandidates = 3
)

// Candidate is one catalog entry proposed for an unknown phrase.
type Candidate struct {
	PriceItemID int64   `json:"price_item_id"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
}

// Suggestion pairs an unknown phrase with its ranked candidates. Phrases with
// no candidate above the threshold get an empty candidate list.
type Suggestion struct {
	OriginalText string      `json:"original_text"`
	Candidates   []Candidate `json:"candidates"`
}

// ForResult builds suggestions for every unknown mention of a parse result.
// The returned slice is nil when the result has no unknown mentions.
func ForResult(res *parse.Result, items []catalog.PriceItem) []Suggestion {
	if res == nil || len(res.UnknownItems) == 0 {
		return nil
	}
	suggestions := make([]Suggestion, 0, len(res.UnknownItems))
	for _, u := range res.UnknownItems {
		suggestions = append(suggestions, Suggestion{
			OriginalText: u.OriginalText,
			Candidates:   candidates(u.OriginalText, items),
		})
	}
	return suggestions
}

// candidates scores the phrase against every item's name and synonyms, keeps
// each item's best score, and returns the top matches above the threshold.
func candidates(phrase string, items []catalog.PriceItem) []Candidate {
	lowered := strings.ToLower(strings.TrimSpace(phrase))
	if lowered == "" {
		return []Candidate{}
	}

	scored := make([]Candidate, 0, len(items))
	for _, item := range items {
		best := matchr.JaroWinkler(lowered, strings.ToLower(item.Name), true)
		for _, syn := range item.SynonymList() {
			if s := matchr.JaroWinkler(lowered, strings.ToLower(syn), true); s > best {
				best = s
			}
		}
		if best >= minScore {
			scored = append(scored, Candidate{PriceItemID: item.ID, Name: item.Name, Score: best})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Name < scored[j].Name
	})
	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	return scored
}

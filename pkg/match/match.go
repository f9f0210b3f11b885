// Package match resolves free-text names against a catalog of candidate
// labels. Zendesk organizations, Toggl clients and FreshBooks projects share
// no identifiers, so the only handle we have on "the same customer" is an
// approximate comparison of the names humans typed into each system.
package match

import (
	"sort"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// tieBreakWindow is how many leading candidates are re-ranked when the top
// two scores are equal.
const tieBreakWindow = 15

// Result is a scored candidate label. Scores run 0-100.
type Result struct {
	Candidate string
	Score     int
}

// Extract scores every candidate against the query and returns them ordered
// by descending score. Equal scores keep the input order. A limit of 0 or
// less returns all candidates.
func Extract(query string, candidates []string, limit int) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{Candidate: c, Score: fuzzy.WRatio(query, c)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Best returns the candidate that best matches the query, or ok=false when
// no candidate reaches minConfidence (or the candidate set is empty).
//
// When the two leading scores are equal the ranking is ambiguous: the
// primary ratio cannot tell the candidates apart. In that case the leading
// candidates (at most tieBreakWindow of them) are re-ranked with a token-set
// ratio, which ignores word order and duplication, and the new leader wins.
func Best(query string, candidates []string, minConfidence int) (string, bool) {
	results := Extract(query, candidates, 0)
	if len(results) == 0 {
		return "", false
	}
	if results[0].Score < minConfidence {
		return "", false
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return breakTie(query, results), true
	}
	return results[0].Candidate, true
}

func breakTie(query string, results []Result) string {
	window := results
	if len(window) > tieBreakWindow {
		window = window[:tieBreakWindow]
	}
	best := window[0].Candidate
	bestScore := -1
	for _, r := range window {
		if score := fuzzy.TokenSetRatio(query, r.Candidate); score > bestScore {
			best = r.Candidate
			bestScore = score
		}
	}
	return best
}

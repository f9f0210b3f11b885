package bridge

import (
	"sort"
	"strings"

	"github.com/jdevries/workbridge/pkg/match"
)

// skipKeywords are queries the operator can type to skip the current
// entry.
var skipKeywords = map[string]bool{
	"skip":   true,
	"cancel": true,
	"break":  true,
}

// resolveProject finds the FreshBooks project the operator wants to book
// on. A high-scoring unambiguous match is proposed for confirmation;
// anything inconclusive (low score or a tied top pair) lists the best
// candidates and lets the operator pick, refine the query, or skip. The
// loop is bounded; an exhausted search counts as a skip.
//
// Returns the chosen project name, or "" when the entry should be
// skipped.
func (b *Bridge) resolveProject(query string, catalog map[string]int64) (string, error) {
	if len(catalog) == 0 {
		b.ui.Warn("The FreshBooks project list is empty.")
		return "", nil
	}
	candidates := make([]string, 0, len(catalog))
	for name := range catalog {
		candidates = append(candidates, name)
	}
	// Deterministic ranking between equal-scoring candidates.
	sort.Strings(candidates)

	for round := 0; round < maxSearchRounds; round++ {
		if query == "" {
			fresh, err := b.ui.AskQuery()
			if err != nil {
				return "", err
			}
			query = strings.TrimSpace(fresh)
			if query == "" {
				return "", nil
			}
		}
		if skipKeywords[strings.ToLower(query)] {
			return "", nil
		}

		results := match.Extract(query, candidates, topCandidates)
		top := results[0]
		tie := len(results) > 1 && top.Score == results[1].Score

		if top.Score >= projectConfidence && !tie {
			ok, err := b.ui.ConfirmMatch(query, top.Candidate)
			if err != nil {
				return "", err
			}
			if ok {
				b.log.Info().
					Str("query", query).
					Str("project", top.Candidate).
					Int("score", top.Score).
					Msg("matched query to FreshBooks project")
				return top.Candidate, nil
			}
			query = ""
			continue
		}

		answer, err := b.ui.Disambiguate(query, results)
		if err != nil {
			return "", err
		}
		switch {
		case answer.Skip:
			return "", nil
		case answer.Candidate != "":
			b.log.Info().
				Str("query", query).
				Str("project", answer.Candidate).
				Msg("operator picked FreshBooks project")
			return answer.Candidate, nil
		default:
			query = strings.TrimSpace(answer.Query)
		}
	}

	b.ui.Warn("Giving up on this entry after too many search rounds.")
	return "", nil
}

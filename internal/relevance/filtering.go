package relevance

import (
	"sort"

	"geodigest/internal/core"
)

// SelectTop returns the n highest-scoring candidates, best first.
// Equal scores keep their collection order. There is no minimum score, and
// the input slice is left untouched.
func SelectTop(candidates []core.Candidate, n int) []core.Candidate {
	if n <= 0 || len(candidates) == 0 {
		return []core.Candidate{}
	}

	sorted := make([]core.Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

package assignment

import (
	"slices"

	"autoassign/internal/domain"
)

// Candidate is one inspector's score against the complaint being assigned.
type Candidate struct {
	InspectorID string
	Score       domain.Score
}

// ScoreInspector scores insp against complaint c given the inspector's
// current workload.
func ScoreInspector(c domain.Complaint, insp domain.Inspector, workload domain.Workload) domain.Score {
	matching := 0
	for _, spec := range insp.Specializations {
		if spec != "" && slices.Contains(c.Categories, spec) {
			matching++
		}
	}
	return domain.Score{
		SameRegion:              c.Region != "" && insp.Region == c.Region,
		MatchingSpecializations: matching,
		Workload:                workload,
	}
}

// compareScores orders a before b when a is the better fit. Keys in
// precedence order: same region, more matching specializations, lower
// workload.
func compareScores(a, b domain.Score) int {
	if a.SameRegion != b.SameRegion {
		if a.SameRegion {
			return -1
		}
		return 1
	}
	if a.MatchingSpecializations != b.MatchingSpecializations {
		return b.MatchingSpecializations - a.MatchingSpecializations
	}
	switch {
	case a.Workload.Less(b.Workload):
		return -1
	case b.Workload.Less(a.Workload):
		return 1
	}
	return 0
}

// Rank returns the candidates without excludeIDs, best fit first. Full ties
// keep their input order.
func Rank(candidates []Candidate, excludeIDs ...string) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.InspectorID != "" && slices.Contains(excludeIDs, c.InspectorID) {
			continue
		}
		ranked = append(ranked, c)
	}
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		return compareScores(a.Score, b.Score)
	})
	return ranked
}

// PickFittest returns the best candidate's inspector ID, or false when no
// candidate remains after excluding excludeIDs.
func PickFittest(candidates []Candidate, excludeIDs ...string) (string, bool) {
	ranked := Rank(candidates, excludeIDs...)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].InspectorID, true
}

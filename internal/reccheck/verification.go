package reccheck

import (
	"fmt"
	"reflect"

	"github.com/okian/allocator/internal/domain/ranking"
	"github.com/okian/allocator/internal/domain/scoring"
)

// verifyRecommendation compares a served recommendation with the local
// ranking and returns every discrepancy found.
func verifyRecommendation(got, want recommendation, k int) []string {
	var out []string

	if got.Task.ID != want.Task.ID {
		out = append(out, fmt.Sprintf("task id %d, want %d", got.Task.ID, want.Task.ID))
	}
	if len(got.TopK) != len(want.TopK) {
		out = append(out, fmt.Sprintf("returned %d candidates, want %d (k=%d)", len(got.TopK), len(want.TopK), k))
	}

	for i := 1; i < len(got.TopK); i++ {
		if got.TopK[i].Score > got.TopK[i-1].Score {
			out = append(out, fmt.Sprintf("position %d score %.4f above position %d score %.4f",
				i, got.TopK[i].Score, i-1, got.TopK[i-1].Score))
		}
	}

	for i, c := range got.TopK {
		if !detailOrderOK(c.Explanation) {
			out = append(out, fmt.Sprintf("position %d: detail order is not %v", i, dimensionNames()))
		}
		if i >= len(want.TopK) {
			continue
		}
		w := want.TopK[i]
		if c.Employee.ID != w.Employee.ID {
			out = append(out, fmt.Sprintf("position %d: employee %d, want %d", i, c.Employee.ID, w.Employee.ID))
			continue
		}
		if c.Score != w.Score {
			out = append(out, fmt.Sprintf("position %d: score %.4f, want %.4f", i, c.Score, w.Score))
		}
		if !reflect.DeepEqual(c.Explanation, w.Explanation) {
			out = append(out, fmt.Sprintf("position %d: explanation differs for employee %d", i, c.Employee.ID))
		}
	}
	return out
}

func detailOrderOK(e scoring.Explanation) bool {
	names := dimensionNames()
	if len(e.Details) != len(names) {
		return false
	}
	for i, d := range e.Details {
		if d.Dimension != names[i] {
			return false
		}
	}
	return true
}

func dimensionNames() []string {
	names := make([]string, len(scoring.Dimensions))
	for i, d := range scoring.Dimensions {
		names[i] = d.Name
	}
	return names
}

// newLocalRanker mirrors the service's scorer. Weights come from /stats when
// the service publishes them.
func newLocalRanker(stats statsResponse) *ranking.Ranker {
	if stats.Weights == nil {
		return ranking.New(scoring.NewScorer())
	}
	return ranking.New(scoring.NewScorer(scoring.WithWeights(scoring.Weights{
		Skill:        stats.Weights.Skill,
		Workload:     stats.Weights.Workload,
		Availability: stats.Weights.Availability,
	})))
}

// Package ranking selects the top-k employees for a task.
package ranking

import (
	"sort"

	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/scoring"
	"github.com/okian/allocator/internal/domain/types"
)

// Ranker scores every employee, orders them by score descending and keeps
// the first k. Equal scores keep their input order; callers that want a
// deterministic tie-break pass employees in a deterministic order (stores
// return them by id ascending).
type Ranker struct {
	scorer scoring.Scorer
}

// New creates a Ranker. A nil scorer falls back to the default weighted scorer.
func New(scorer scoring.Scorer) *Ranker {
	if scorer == nil {
		scorer = scoring.NewScorer()
	}
	return &Ranker{scorer: scorer}
}

// Recommend returns up to k candidates for task. k <= 0 or an empty
// employee list yields an empty, non-nil TopK; k above the employee count
// returns everyone.
func (r *Ranker) Recommend(task model.Task, employees []model.Employee, k int) types.Recommendation {
	rec := types.Recommendation{Task: task, TopK: []types.Candidate{}}
	if k <= 0 || len(employees) == 0 {
		return rec
	}

	candidates := make([]types.Candidate, len(employees))
	for i, emp := range employees {
		res := r.scorer.Score(emp, task)
		candidates[i] = types.Candidate{
			Employee:    emp,
			Score:       res.Score,
			Explanation: res.Explanation,
		}
	}

	// The rounded score is both displayed and sorted on, so the order is
	// reproducible from the JSON output alone.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if k < len(candidates) {
		candidates = candidates[:k]
	}
	rec.TopK = candidates
	return rec
}

// Package types contains the recommendation shapes shared by the service,
// the HTTP API and the verification tool.
package types

import (
	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/scoring"
)

// Candidate is one ranked employee with its score and explanation.
type Candidate struct {
	Employee    model.Employee      `json:"employee"`
	Score       float64             `json:"score"`
	Explanation scoring.Explanation `json:"explanation"`
}

// Recommendation is the ranked top-k for a task. TopK is never nil.
type Recommendation struct {
	Task model.Task  `json:"task"`
	TopK []Candidate `json:"top_k"`
}

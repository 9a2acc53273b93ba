// Package scoring computes how well an employee fits a task.
//
// A score blends three components:
//
//	score = w_skill*skill_match + w_workload*workload_score + w_avail*availability_score
//
// with default weights 0.60 / 0.20 / 0.20. Skill match is the mean of the
// per-dimension normalized matches over the fixed dimension list
// [python, ml, backend, frontend]. Workload and availability are linear in
// their percentages and deliberately left unclamped, so inputs above 100
// produce components outside [0, 1].
package scoring

import (
	"math"

	"github.com/okian/allocator/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultSkillWeight        = 0.60
	DefaultWorkloadWeight     = 0.20
	DefaultAvailabilityWeight = 0.20

	percentScale      = 100.0
	scoreDecimals     = 4
	componentDecimals = 3
)

// Dimension describes one skill axis: its name plus how to read the
// employee level and the task requirement.
type Dimension struct {
	Name     string
	Employee func(model.Employee) int
	Required func(model.Task) int
}

// Dimensions is the fixed, ordered list of skill axes. Explanations list
// their details in this order.
var Dimensions = []Dimension{
	{
		Name:     "python",
		Employee: func(e model.Employee) int { return e.SkillPython },
		Required: func(t model.Task) int { return t.RequiredPython },
	},
	{
		Name:     "ml",
		Employee: func(e model.Employee) int { return e.SkillML },
		Required: func(t model.Task) int { return t.RequiredML },
	},
	{
		Name:     "backend",
		Employee: func(e model.Employee) int { return e.SkillBackend },
		Required: func(t model.Task) int { return t.RequiredBackend },
	},
	{
		Name:     "frontend",
		Employee: func(e model.Employee) int { return e.SkillFrontend },
		Required: func(t model.Task) int { return t.RequiredFrontend },
	},
}

// Detail is the per-dimension breakdown of a skill match.
type Detail struct {
	Dimension       string  `json:"dimension"`
	EmployeeSkill   int     `json:"employee_skill"`
	RequiredSkill   int     `json:"required_skill"`
	NormalizedMatch float64 `json:"normalized_match"`
}

// Explanation shows how a score was derived. All values are rounded to
// three decimals.
type Explanation struct {
	SkillMatch        float64  `json:"skill_match"`
	WorkloadScore     float64  `json:"workload_score"`
	AvailabilityScore float64  `json:"availability_score"`
	Details           []Detail `json:"details"`
}

// Result is the outcome of scoring one employee against one task.
// Score is rounded to four decimals and is the value ranking sorts on.
type Result struct {
	Score       float64     `json:"score"`
	Explanation Explanation `json:"explanation"`
}

// Weights holds the blend coefficients.
type Weights struct {
	Skill        float64
	Workload     float64
	Availability float64
}

// DefaultWeights returns the 0.60 / 0.20 / 0.20 blend.
func DefaultWeights() Weights {
	return Weights{
		Skill:        DefaultSkillWeight,
		Workload:     DefaultWorkloadWeight,
		Availability: DefaultAvailabilityWeight,
	}
}

func (w Weights) valid() bool {
	if w.Skill < 0 || w.Workload < 0 || w.Availability < 0 {
		return false
	}
	return w.Skill+w.Workload+w.Availability > 0
}

// Scorer maps an (employee, task) pair to a Result.
type Scorer interface {
	Score(employee model.Employee, task model.Task) Result
}

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithWeights overrides the blend. Negative or all-zero weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *WeightedScorer) {
		if w.valid() {
			s.weights = w
		}
	}
}

// WeightedScorer implements Scorer. It is stateless and safe for
// concurrent use.
type WeightedScorer struct {
	weights Weights
}

// NewScorer creates a scorer with the default weights unless overridden.
func NewScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the active blend.
func (s *WeightedScorer) Weights() Weights {
	return s.weights
}

// Score computes the score and explanation for one employee.
func (s *WeightedScorer) Score(employee model.Employee, task model.Task) Result {
	details := make([]Detail, 0, len(Dimensions))
	var sum float64
	for _, d := range Dimensions {
		e, r := d.Employee(employee), d.Required(task)
		m := NormalizedMatch(e, r)
		sum += m
		details = append(details, Detail{
			Dimension:       d.Name,
			EmployeeSkill:   e,
			RequiredSkill:   r,
			NormalizedMatch: Round(m, componentDecimals),
		})
	}

	skillMatch := sum / float64(len(Dimensions))
	workloadScore := 1.0 - float64(employee.CurrentWorkload)/percentScale
	availabilityScore := float64(employee.Availability) / percentScale

	score := s.weights.Skill*skillMatch +
		s.weights.Workload*workloadScore +
		s.weights.Availability*availabilityScore

	return Result{
		Score: Round(score, scoreDecimals),
		Explanation: Explanation{
			SkillMatch:        Round(skillMatch, componentDecimals),
			WorkloadScore:     Round(workloadScore, componentDecimals),
			AvailabilityScore: Round(availabilityScore, componentDecimals),
			Details:           details,
		},
	}
}

// NormalizedMatch returns 1 when there is no requirement, otherwise the
// ratio of employee level to required level capped at 1.
func NormalizedMatch(employee, required int) float64 {
	if required == 0 {
		return 1.0
	}
	return math.Min(float64(employee)/float64(required), 1.0)
}

// Round rounds x to the given number of decimals, half away from zero.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

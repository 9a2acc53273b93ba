package scoring_test

import (
	"testing"

	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeightedScorer_Score(t *testing.T) {
	Convey("Given a scorer with default weights", t, func() {
		scorer := scoring.NewScorer()

		Convey("When scoring an employee who meets every requirement", func() {
			emp := model.Employee{
				ID: 1, SkillPython: 5, SkillML: 3, SkillBackend: 4, SkillFrontend: 2,
				CurrentWorkload: 30, Availability: 80,
			}
			task := model.Task{ID: 1, RequiredPython: 4, RequiredML: 3, RequiredBackend: 2, RequiredFrontend: 0}

			res := scorer.Score(emp, task)

			Convey("Then the score should be exactly 0.9", func() {
				So(res.Score, ShouldEqual, 0.9)
			})

			Convey("And the explanation should carry rounded components", func() {
				So(res.Explanation.SkillMatch, ShouldEqual, 1.0)
				So(res.Explanation.WorkloadScore, ShouldEqual, 0.7)
				So(res.Explanation.AvailabilityScore, ShouldEqual, 0.8)
			})

			Convey("And every dimension should be fully matched", func() {
				So(res.Explanation.Details, ShouldHaveLength, 4)
				for _, d := range res.Explanation.Details {
					So(d.NormalizedMatch, ShouldEqual, 1.0)
				}
				So(res.Explanation.Details[0], ShouldResemble, scoring.Detail{
					Dimension: "python", EmployeeSkill: 5, RequiredSkill: 4, NormalizedMatch: 1.0,
				})
				So(res.Explanation.Details[3], ShouldResemble, scoring.Detail{
					Dimension: "frontend", EmployeeSkill: 2, RequiredSkill: 0, NormalizedMatch: 1.0,
				})
			})
		})

		Convey("When the employee only partially meets requirements", func() {
			emp := model.Employee{SkillPython: 2, SkillML: 1, SkillBackend: 0, SkillFrontend: 5, CurrentWorkload: 50, Availability: 50}
			task := model.Task{RequiredPython: 4, RequiredML: 3, RequiredBackend: 5, RequiredFrontend: 5}

			res := scorer.Score(emp, task)

			Convey("Then partial credit should be proportional", func() {
				d := res.Explanation.Details
				So(d[0].NormalizedMatch, ShouldAlmostEqual, 0.5, 1e-3)
				So(d[1].NormalizedMatch, ShouldAlmostEqual, 1.0/3.0, 1e-3)
				So(d[1].NormalizedMatch, ShouldEqual, 0.333)
				So(d[2].NormalizedMatch, ShouldEqual, 0.0)
				So(d[3].NormalizedMatch, ShouldEqual, 1.0)
			})

			Convey("Then the score should blend the components", func() {
				// skill = (0.5 + 1/3 + 0 + 1) / 4 = 0.458333...
				// 0.6*0.458333 + 0.2*0.5 + 0.2*0.5 = 0.475
				So(res.Explanation.SkillMatch, ShouldEqual, 0.458)
				So(res.Score, ShouldEqual, 0.475)
			})
		})

		Convey("When the task has no requirements", func() {
			emp := model.Employee{CurrentWorkload: 0, Availability: 100}
			res := scorer.Score(emp, model.Task{})

			Convey("Then every dimension is satisfied regardless of skill", func() {
				for _, d := range res.Explanation.Details {
					So(d.NormalizedMatch, ShouldEqual, 1.0)
					So(d.EmployeeSkill, ShouldEqual, 0)
				}
				So(res.Score, ShouldEqual, 1.0)
			})
		})

		Convey("When workload and availability exceed 100", func() {
			emp := model.Employee{CurrentWorkload: 150, Availability: 120}
			res := scorer.Score(emp, model.Task{})

			Convey("Then the components are not clamped", func() {
				So(res.Explanation.WorkloadScore, ShouldEqual, -0.5)
				So(res.Explanation.AvailabilityScore, ShouldEqual, 1.2)
				// 0.6 + 0.2*(-0.5) + 0.2*1.2 = 0.74
				So(res.Score, ShouldEqual, 0.74)
			})
		})

		Convey("When skills exceed the nominal ceiling", func() {
			emp := model.Employee{SkillPython: 50, Availability: 100}
			task := model.Task{RequiredPython: 5}

			Convey("Then the match is capped at 1", func() {
				res := scorer.Score(emp, task)
				So(res.Explanation.Details[0].NormalizedMatch, ShouldEqual, 1.0)
			})
		})

		Convey("When scoring the same pair twice", func() {
			emp := model.Employee{SkillPython: 3, SkillML: 2, CurrentWorkload: 45, Availability: 35}
			task := model.Task{RequiredPython: 5, RequiredML: 4}

			Convey("Then the results should be identical", func() {
				So(scorer.Score(emp, task), ShouldResemble, scorer.Score(emp, task))
			})
		})
	})
}

func TestScorer_DimensionOrder(t *testing.T) {
	Convey("Given the fixed dimension list", t, func() {
		names := make([]string, 0, len(scoring.Dimensions))
		for _, d := range scoring.Dimensions {
			names = append(names, d.Name)
		}

		Convey("Then dimensions are python, ml, backend, frontend", func() {
			So(names, ShouldResemble, []string{"python", "ml", "backend", "frontend"})
		})

		Convey("Then explanations always follow that order", func() {
			res := scoring.NewScorer().Score(
				model.Employee{SkillFrontend: 1, SkillBackend: 2, SkillML: 3, SkillPython: 4},
				model.Task{RequiredFrontend: 4, RequiredBackend: 3, RequiredML: 2, RequiredPython: 1},
			)
			got := make([]string, 0, 4)
			for _, d := range res.Explanation.Details {
				got = append(got, d.Dimension)
			}
			So(got, ShouldResemble, names)
			So(res.Explanation.Details[3].NormalizedMatch, ShouldEqual, 0.25)
		})
	})
}

func TestNormalizedMatch(t *testing.T) {
	Convey("Given normalized match inputs", t, func() {
		Convey("When required is zero", func() {
			So(scoring.NormalizedMatch(0, 0), ShouldEqual, 1.0)
			So(scoring.NormalizedMatch(5, 0), ShouldEqual, 1.0)
		})

		Convey("When the employee meets or exceeds the requirement", func() {
			So(scoring.NormalizedMatch(3, 3), ShouldEqual, 1.0)
			So(scoring.NormalizedMatch(5, 2), ShouldEqual, 1.0)
		})

		Convey("When the employee falls short", func() {
			So(scoring.NormalizedMatch(1, 4), ShouldEqual, 0.25)
			So(scoring.NormalizedMatch(2, 3), ShouldAlmostEqual, 2.0/3.0, 1e-9)
			So(scoring.NormalizedMatch(0, 5), ShouldEqual, 0.0)
		})
	})
}

func TestWithWeights(t *testing.T) {
	Convey("Given weight overrides", t, func() {
		emp := model.Employee{CurrentWorkload: 0, Availability: 0}

		Convey("When valid weights are supplied", func() {
			s := scoring.NewScorer(scoring.WithWeights(scoring.Weights{Skill: 1, Workload: 0, Availability: 0}))

			Convey("Then only skill contributes", func() {
				So(s.Weights().Skill, ShouldEqual, 1.0)
				So(s.Score(emp, model.Task{}).Score, ShouldEqual, 1.0)
			})
		})

		Convey("When a negative weight is supplied", func() {
			s := scoring.NewScorer(scoring.WithWeights(scoring.Weights{Skill: -1, Workload: 1, Availability: 1}))

			Convey("Then the defaults are kept", func() {
				So(s.Weights(), ShouldResemble, scoring.DefaultWeights())
			})
		})

		Convey("When all weights are zero", func() {
			s := scoring.NewScorer(scoring.WithWeights(scoring.Weights{}))
			So(s.Weights(), ShouldResemble, scoring.DefaultWeights())
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(scoring.Round(0.90000000001, 4), ShouldEqual, 0.9)
		So(scoring.Round(0.12345, 3), ShouldEqual, 0.123)
		So(scoring.Round(-0.5, 3), ShouldEqual, -0.5)
	})
}

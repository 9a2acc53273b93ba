package reccheck

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/allocator/internal/adapters/http/api"
	repository "github.com/okian/allocator/internal/adapters/repository"
	service "github.com/okian/allocator/internal/app"
	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/ranking"
	"github.com/okian/allocator/internal/domain/scoring"
	"github.com/okian/allocator/internal/domain/types"
	"github.com/okian/allocator/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// newTestServer serves the real API over the sample dataset. tamper, when
// set, rewrites /recommend responses.
func newTestServer(tamper func(*types.Recommendation)) (*httptest.Server, func()) {
	store, err := repository.NewMemoryStoreFromFile("../../testdata/dataset.yaml")
	if err != nil {
		panic(err)
	}
	svc := service.New(service.WithStore(store))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)

	var h http.Handler = mux
	if tamper != nil {
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/recommend" {
				mux.ServeHTTP(w, r)
				return
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, r)
			var body types.Recommendation
			_ = json.Unmarshal(rec.Body.Bytes(), &body)
			tamper(&body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)
		})
	}

	srv := httptest.NewServer(h)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func testConfig(url string) *Config {
	return &Config{BaseURL: url, K: 3, Workers: 2, Timeout: 5 * time.Second}
}

func TestRun(t *testing.T) {
	Convey("Given a healthy allocator", t, func() {
		srv, stop := newTestServer(nil)
		defer stop()

		Convey("When every task is checked", func() {
			cfg := testConfig(srv.URL)
			cfg.OutputFile = filepath.Join(os.TempDir(), "reccheck-"+time.Now().Format("150405.000000000")+".json")
			defer func() { _ = os.Remove(cfg.OutputFile) }()

			report, err := Run(context.Background(), cfg)

			Convey("Then all tasks pass", func() {
				So(err, ShouldBeNil)
				So(report.Tasks, ShouldEqual, 4)
				So(report.Employees, ShouldEqual, 5)
				So(report.Passed, ShouldEqual, 4)
				So(report.Results[0].Returned, ShouldEqual, 3)
			})

			Convey("And the report is written", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var saved Report
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved.Passed, ShouldEqual, 4)
				So(saved.K, ShouldEqual, 3)
			})
		})

		Convey("When k exceeds the employee count", func() {
			cfg := testConfig(srv.URL)
			cfg.K = 10
			report, err := Run(context.Background(), cfg)

			Convey("Then every employee is expected", func() {
				So(err, ShouldBeNil)
				So(report.Results[0].Expected, ShouldEqual, 5)
				So(report.Results[0].Returned, ShouldEqual, 5)
			})
		})

		Convey("When k is above the server limit", func() {
			cfg := testConfig(srv.URL)
			cfg.K = 50
			report, err := Run(context.Background(), cfg)

			Convey("Then every task errors", func() {
				So(errors.Is(err, ErrMismatch), ShouldBeTrue)
				So(report.Errors, ShouldEqual, 4)
				So(report.Results[0].Error, ShouldContainSubstring, "400")
			})
		})
	})

	Convey("Given an allocator that swaps the top two candidates", t, func() {
		srv, stop := newTestServer(func(rec *types.Recommendation) {
			if len(rec.TopK) > 1 {
				rec.TopK[0], rec.TopK[1] = rec.TopK[1], rec.TopK[0]
			}
		})
		defer stop()

		Convey("When checked", func() {
			report, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then the mismatch is reported", func() {
				So(errors.Is(err, ErrMismatch), ShouldBeTrue)
				So(report.Failed, ShouldBeGreaterThan, 0)
				So(strings.Join(report.Results[0].Mismatches, "\n"), ShouldContainSubstring, "above position")
			})
		})
	})

	Convey("Given an unreachable service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := Run(context.Background(), testConfig(srv.URL))
		So(errors.Is(err, ErrUnhealthy), ShouldBeTrue)
	})
}

func TestVerifyRecommendation(t *testing.T) {
	Convey("Given a local ranking", t, func() {
		employees := []model.Employee{
			{ID: 1, SkillPython: 5, SkillML: 5, SkillBackend: 3, SkillFrontend: 1, CurrentWorkload: 70, Availability: 30},
			{ID: 4, SkillPython: 5, SkillML: 3, SkillBackend: 4, SkillFrontend: 2, CurrentWorkload: 30, Availability: 80},
		}
		task := model.Task{ID: 4, RequiredPython: 4, RequiredML: 3, RequiredBackend: 2}
		want := ranking.New(scoring.NewScorer()).Recommend(task, employees, 2)

		Convey("When the served recommendation is identical", func() {
			got := ranking.New(scoring.NewScorer()).Recommend(task, employees, 2)
			So(verifyRecommendation(got, want, 2), ShouldBeEmpty)
		})

		Convey("When a score drifts", func() {
			got := ranking.New(scoring.NewScorer()).Recommend(task, employees, 2)
			got.TopK[1].Score = 0.1
			So(strings.Join(verifyRecommendation(got, want, 2), "\n"), ShouldContainSubstring, "score 0.1000, want 0.7200")
		})

		Convey("When a candidate is missing", func() {
			got := ranking.New(scoring.NewScorer()).Recommend(task, employees, 1)
			So(verifyRecommendation(got, want, 2)[0], ShouldContainSubstring, "returned 1 candidates, want 2")
		})

		Convey("When details are reordered", func() {
			got := ranking.New(scoring.NewScorer()).Recommend(task, employees, 2)
			d := got.TopK[0].Explanation.Details
			d[0], d[3] = d[3], d[0]
			So(strings.Join(verifyRecommendation(got, want, 2), "\n"), ShouldContainSubstring, "detail order")
		})
	})

	Convey("Given published weights", t, func() {
		var sr statsResponse
		So(json.Unmarshal([]byte(`{"weights":{"skill":1,"workload":0,"availability":0}}`), &sr), ShouldBeNil)

		r := newLocalRanker(sr)
		rec := r.Recommend(model.Task{ID: 1}, []model.Employee{{ID: 1, CurrentWorkload: 100}}, 1)
		So(rec.TopK[0].Score, ShouldEqual, 1.0)
	})
}

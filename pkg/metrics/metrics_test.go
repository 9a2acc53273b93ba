package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "allocator")
				So(manager.subsystem, ShouldEqual, "recommender")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.metricPrefix, ShouldEqual, "pfx")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
			})

			Convey("And metric names should carry the prefix", func() {
				manager.RecordRecommendation(OutcomeOK)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_pfx_recommendations_total")
			})
		})

		Convey("When empty option values are supplied", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithPrometheusRegistry(registry))

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "allocator")
				So(manager.subsystem, ShouldEqual, "recommender")
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording recommendations", func() {
			manager.RecordRecommendation(OutcomeOK)
			manager.RecordRecommendation(OutcomeOK)
			manager.RecordRecommendation(OutcomeNotFound)

			Convey("Then counters should be split by outcome", func() {
				So(testutil.ToFloat64(manager.recommendations.WithLabelValues(OutcomeOK)), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.recommendations.WithLabelValues(OutcomeNotFound)), ShouldEqual, 1)
			})
		})

		Convey("When recording a ranking pass", func() {
			manager.RecordRanking(1.5, 12, 5, 0.9, true)
			manager.RecordRanking(0.5, 3, 3, 0, false)

			Convey("Then candidates scored should accumulate", func() {
				So(testutil.ToFloat64(manager.candidatesScored), ShouldEqual, 15)
			})
		})

		Convey("When recording store activity", func() {
			manager.RecordStoreQuery("list_employees", 2)
			manager.RecordStoreError("get_task")

			Convey("Then the store error counter should increase", func() {
				So(testutil.ToFloat64(manager.storeErrors.WithLabelValues("get_task")), ShouldEqual, 1)
			})
		})

		Convey("When the manager is disabled", func() {
			disabled := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			disabled.RecordRecommendation(OutcomeOK)

			Convey("Then nothing should be recorded", func() {
				So(testutil.ToFloat64(disabled.recommendations.WithLabelValues(OutcomeOK)), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When calling the package-level helpers", func() {
			So(func() {
				RecordRecommendation(OutcomeError)
				RecordRanking(1, 1, 1, 0.5, true)
				RecordStoreQuery("list_tasks", 1)
				RecordStoreError("list_tasks")
				UpdateEmployeeCount(10)
				UpdateTaskCount(4)
				RecordHTTPRequest("recommend", "GET", "200")
				RecordHTTPRequestDuration("recommend", "GET", "200", 3)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("recommend", "GET", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)

			Convey("Then the custom registry should expose them", func() {
				So(GetRegistry(), ShouldNotBeNil)
				So(testutil.ToFloat64(globalManager.employeesTotal), ShouldEqual, 10)
			})
		})

		Convey("When measuring elapsed time", func() {
			So(SinceMs(time.Now().Add(-2*time.Millisecond)), ShouldBeGreaterThanOrEqualTo, 2.0)
		})
	})
}

func TestRefreshInterval(t *testing.T) {
	Convey("Given the global refresh interval", t, func() {
		prev := RefreshInterval()
		defer SetRefreshInterval(prev)

		Convey("Then it defaults to the package default", func() {
			So(NewManager(WithPrometheusRegistry(prometheus.NewRegistry())).RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})

		Convey("When it is set to a positive duration", func() {
			SetRefreshInterval(3 * time.Second)

			Convey("Then the updater interval follows", func() {
				So(RefreshInterval(), ShouldEqual, 3*time.Second)
			})
		})

		Convey("When it is set to zero", func() {
			SetRefreshInterval(3 * time.Second)
			SetRefreshInterval(0)

			Convey("Then the previous interval is kept", func() {
				So(RefreshInterval(), ShouldEqual, 3*time.Second)
			})
		})
	})
}

package tracing

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/okian/allocator/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestNewProvider(t *testing.T) {
	Convey("Given tracing configuration", t, func() {
		ctx := context.Background()

		Convey("When tracing is disabled", func() {
			p, err := NewProvider(ctx, Config{ServiceName: ServiceName})

			Convey("Then a no-op provider is returned", func() {
				So(err, ShouldBeNil)
				So(p.IsEnabled(), ShouldBeFalse)
				So(p.Shutdown(ctx), ShouldBeNil)
			})
		})

		Convey("When the service name is missing", func() {
			_, err := NewProvider(ctx, Config{Enabled: true, SamplingRate: 0.5})
			So(errors.Is(err, ErrMissingServiceName), ShouldBeTrue)
		})

		Convey("When the sampling rate is out of range", func() {
			for _, rate := range []float64{-0.1, 1.5} {
				_, err := NewProvider(ctx, Config{Enabled: true, ServiceName: ServiceName, SamplingRate: rate})
				So(errors.Is(err, ErrInvalidSampleRate), ShouldBeTrue)
			}
		})

		Convey("When tracing is enabled with an OTLP endpoint", func() {
			prev := otel.GetTracerProvider()
			defer otel.SetTracerProvider(prev)

			p, err := NewProvider(ctx, Config{
				Enabled:      true,
				ServiceName:  ServiceName,
				Endpoint:     "localhost:4318",
				SamplingRate: 0.25,
				Insecure:     true,
			})

			Convey("Then the provider is enabled and shuts down cleanly", func() {
				So(err, ShouldBeNil)
				So(p.IsEnabled(), ShouldBeTrue)

				sctx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				So(p.Shutdown(sctx), ShouldBeNil)
			})
		})
	})
}

func TestSampler(t *testing.T) {
	Convey("Given sampling rates", t, func() {
		So(sampler(1).Description(), ShouldEqual, sdktrace.AlwaysSample().Description())
		So(sampler(0).Description(), ShouldEqual, sdktrace.NeverSample().Description())
		So(sampler(0.5).Description(), ShouldContainSubstring, "TraceIDRatioBased")
	})
}

func TestStartSpan(t *testing.T) {
	Convey("Given a recording tracer provider", t, func() {
		prev := otel.GetTracerProvider()
		defer otel.SetTracerProvider(prev)

		rec := tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

		Convey("When a span ends without error", func() {
			ctx, end := StartSpan(context.Background(), "recommend", attribute.Int64("task_id", 4))
			So(TraceID(ctx), ShouldNotBeEmpty)
			SetAttributes(ctx, attribute.Int("k", 3))
			end(nil)

			Convey("Then it is recorded with its attributes", func() {
				spans := rec.Ended()
				So(spans, ShouldHaveLength, 1)
				So(spans[0].Name(), ShouldEqual, "recommend")
				So(spans[0].Attributes(), ShouldContain, attribute.Int64("task_id", 4))
				So(spans[0].Attributes(), ShouldContain, attribute.Int("k", 3))
				So(spans[0].Status().Code, ShouldEqual, codes.Unset)
			})
		})

		Convey("When a span ends with an error", func() {
			_, end := StartSpan(context.Background(), "load")
			end(errors.New("boom"))

			Convey("Then the error status is set", func() {
				spans := rec.Ended()
				So(spans, ShouldHaveLength, 1)
				So(spans[0].Status().Code, ShouldEqual, codes.Error)
				So(spans[0].Status().Description, ShouldEqual, "boom")
			})
		})
	})

	Convey("Given a context without a span", t, func() {
		So(TraceID(context.Background()), ShouldEqual, "")
	})
}

func TestNewResource(t *testing.T) {
	Convey("Given a tracing config with an environment", t, func() {
		res, err := newResource(context.Background(), Config{ServiceName: ServiceName, Environment: "staging"})
		So(err, ShouldBeNil)

		Convey("Then the resource carries service and environment", func() {
			env, ok := res.Set().Value(attribute.Key("environment"))
			So(ok, ShouldBeTrue)
			So(env.AsString(), ShouldEqual, "staging")

			svc, ok := res.Set().Value(attribute.Key("service.name"))
			So(ok, ShouldBeTrue)
			So(svc.AsString(), ShouldEqual, ServiceName)
		})
	})
}

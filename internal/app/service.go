// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	repository "github.com/okian/allocator/internal/adapters/repository"
	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/ranking"
	"github.com/okian/allocator/internal/domain/scoring"
	"github.com/okian/allocator/internal/domain/types"
	"github.com/okian/allocator/internal/tracing"
	"github.com/okian/allocator/pkg/logger"
	"github.com/okian/allocator/pkg/metrics"
)

const defaultMaxK = 20

// Service answers recommendation queries against a Store.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	scorer scoring.Scorer
	ranker *ranking.Ranker

	maxK int

	started bool
	startAt time.Time

	// counters for /stats
	served   int64
	notFound int64
	rejected int64
	failed   int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the employee and task store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer replaces the default weighted scorer.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithMaxK sets the largest accepted k.
func WithMaxK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.maxK = k
		}
	}
}

// New constructs a Service. A store must be supplied with WithStore before
// Start is called.
func New(opts ...Option) *Service {
	s := &Service{
		scorer: scoring.NewScorer(),
		maxK:   defaultMaxK,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ranker = ranking.New(s.scorer)
	return s
}

// Start checks the store and publishes the dataset size gauges.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		return ErrNoStore
	}

	s.logger.Info(ctx, "starting recommendation service...")

	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreDegraded, err)
	}
	emps, err := s.store.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("load employees: %w", err)
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	metrics.UpdateEmployeeCount(len(emps))
	metrics.UpdateTaskCount(len(tasks))

	s.started = true
	s.startAt = time.Now()
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("employees", len(emps)),
		logger.Int("tasks", len(tasks)),
		logger.Int("maxK", s.maxK),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping recommendation service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "store close failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// MaxK returns the largest accepted k.
func (s *Service) MaxK() int {
	return s.maxK
}

// ListEmployees returns all employees ordered by id.
func (s *Service) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListEmployees(ctx)
}

// ListTasks returns all tasks ordered by id.
func (s *Service) ListTasks(ctx context.Context) ([]model.Task, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx)
}

// GetTask returns one task or repository.ErrNotFound.
func (s *Service) GetTask(ctx context.Context, id int64) (model.Task, error) {
	if err := s.ready(); err != nil {
		return model.Task{}, err
	}
	return s.store.GetTask(ctx, id)
}

// Recommend ranks every employee against the task and returns the top k.
// k must be in [1, MaxK]; an unknown task yields repository.ErrNotFound.
func (s *Service) Recommend(ctx context.Context, taskID int64, k int) (rec types.Recommendation, err error) {
	ctx, end := tracing.StartSpan(ctx, "service.recommend",
		attribute.Int64("task_id", taskID),
		attribute.Int("k", k),
	)
	defer func() {
		s.recordOutcome(err)
		end(err)
	}()

	if err = s.ready(); err != nil {
		return types.Recommendation{}, err
	}
	if k < 1 || k > s.maxK {
		return types.Recommendation{}, fmt.Errorf("%w: %d not in [1, %d]", ErrKOutOfRange, k, s.maxK)
	}

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return types.Recommendation{}, err
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return types.Recommendation{}, err
	}

	start := time.Now()
	rec = s.ranker.Recommend(task, employees, k)
	latency := metrics.SinceMs(start)

	var top float64
	if len(rec.TopK) > 0 {
		top = rec.TopK[0].Score
	}
	metrics.RecordRanking(latency, len(employees), k, top, len(rec.TopK) > 0)
	tracing.SetAttributes(ctx, attribute.Int("candidates", len(employees)))

	s.logger.Debug(ctx, "recommendation computed",
		logger.Int64("taskID", taskID),
		logger.Int("k", k),
		logger.Int("candidates", len(employees)),
		logger.Int("returned", len(rec.TopK)),
		logger.Float64("latencyMs", latency),
	)
	return rec, nil
}

func (s *Service) recordOutcome(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.served++
		metrics.RecordRecommendation(metrics.OutcomeOK)
	case isNotFound(err):
		s.notFound++
		metrics.RecordRecommendation(metrics.OutcomeNotFound)
	case errors.Is(err, ErrKOutOfRange):
		s.rejected++
		metrics.RecordRecommendation(metrics.OutcomeInvalid)
	default:
		s.failed++
		metrics.RecordRecommendation(metrics.OutcomeError)
	}
}

// Ping reports store health.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreDegraded, err)
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	stats := map[string]any{
		"started":                 started,
		"maxK":                    s.maxK,
		"recommendationsServed":   s.served,
		"recommendationsNotFound": s.notFound,
		"recommendationsRejected": s.rejected,
		"recommendationsFailed":   s.failed,
	}
	if ws, ok := s.scorer.(*scoring.WeightedScorer); ok {
		w := ws.Weights()
		stats["weights"] = map[string]float64{
			"skill":        w.Skill,
			"workload":     w.Workload,
			"availability": w.Availability,
		}
	}
	if started {
		stats["uptimeSeconds"] = time.Since(s.startAt).Seconds()
	}
	s.mu.RUnlock()

	if !started {
		return stats
	}
	if emps, err := s.store.ListEmployees(ctx); err == nil {
		stats["employees"] = len(emps)
		metrics.UpdateEmployeeCount(len(emps))
	}
	if tasks, err := s.store.ListTasks(ctx); err == nil {
		stats["tasks"] = len(tasks)
		metrics.UpdateTaskCount(len(tasks))
	}
	return stats
}

package reccheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/allocator/internal/domain/ranking"
	"github.com/okian/allocator/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes a complete verification pass. It returns ErrMismatch when at
// least one task failed verification.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("reccheck")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting recommendation check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("k", config.K),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, err
	}

	snap, err := fetchSnapshot(ctx, client)
	if err != nil {
		return nil, err
	}
	if len(snap.tasks) == 0 {
		return nil, ErrNoTasks
	}
	stats.Employees = len(snap.employees)

	var sr statsResponse
	if _, err := client.getJSON(ctx, "/stats", &sr); err != nil {
		log.Warn(ctx, "stats unavailable; assuming default weights", logger.Error(err))
	}

	results, err := checkTasks(ctx, config, client, newLocalRanker(sr), snap)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		stats.TasksChecked++
		switch {
		case r.Error != "":
			stats.Errors++
		case r.Passed:
			stats.Passed++
		default:
			stats.Failed++
		}
		if config.Verbose || !r.Passed {
			log.Info(ctx, "task checked",
				logger.Int64("taskID", r.TaskID),
				logger.Bool("passed", r.Passed),
				logger.Int("returned", r.Returned),
				logger.Any("mismatches", r.Mismatches),
				logger.String("error", r.Error))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report := &Report{
		BaseURL:   config.BaseURL,
		K:         config.K,
		Employees: stats.Employees,
		Tasks:     stats.TasksChecked,
		Passed:    stats.Passed,
		Failed:    stats.Failed,
		Errors:    stats.Errors,
		Duration:  stats.Duration.String(),
		Results:   results,
	}

	if config.OutputFile != "" {
		if err := saveReport(config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		} else {
			log.Info(ctx, "report saved", logger.String("filename", config.OutputFile))
		}
	}

	displayFinalStats(ctx, stats)

	if stats.Failed > 0 || stats.Errors > 0 {
		return report, fmt.Errorf("%w: %d failed, %d errors out of %d tasks",
			ErrMismatch, stats.Failed, stats.Errors, stats.TasksChecked)
	}
	log.Info(ctx, "check completed successfully")
	return report, nil
}

// checkServiceHealth verifies GET /health answers ok.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var h healthResponse
	if _, err := client.getJSON(ctx, "/health", &h); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if h.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, h.Status)
	}
	return nil
}

func fetchSnapshot(ctx context.Context, client *HTTPClient) (snapshot, error) {
	var snap snapshot
	if _, err := client.getJSON(ctx, "/employees", &snap.employees); err != nil {
		return snapshot{}, fmt.Errorf("fetch employees: %w", err)
	}
	if _, err := client.getJSON(ctx, "/tasks", &snap.tasks); err != nil {
		return snapshot{}, fmt.Errorf("fetch tasks: %w", err)
	}
	return snap, nil
}

// checkTasks requests /recommend for every task with at most config.Workers
// requests in flight and verifies each response.
func checkTasks(ctx context.Context, config *Config, client *HTTPClient, ranker *ranking.Ranker, snap snapshot) ([]TaskResult, error) {
	results := make([]TaskResult, len(snap.tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Workers, 1))
	for i, task := range snap.tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			want := ranker.Recommend(task, snap.employees, config.K)
			res := TaskResult{TaskID: task.ID, Expected: len(want.TopK)}

			var got recommendation
			if _, err := client.getJSON(gctx, recommendPath(task.ID, config.K), &got); err != nil {
				res.Error = err.Error()
				results[i] = res
				return nil
			}
			res.Returned = len(got.TopK)
			res.Mismatches = verifyRecommendation(got, want, config.K)
			res.Passed = len(res.Mismatches) == 0
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// saveReport writes the report as indented JSON.
func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var tasksPerSecond float64
	if stats.Duration > 0 {
		tasksPerSecond = float64(stats.TasksChecked) / stats.Duration.Seconds()
	}
	logger.Named("reccheck").Info(ctx, "final statistics",
		logger.Int("employees", stats.Employees),
		logger.Int("tasksChecked", stats.TasksChecked),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Int("errors", stats.Errors),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("tasksPerSecond", tasksPerSecond))
}

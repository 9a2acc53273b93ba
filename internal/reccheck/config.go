// Package reccheck verifies a running allocator against a local recomputation
// of every recommendation.
package reccheck

import (
	"errors"
	"time"

	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/internal/domain/types"
)

// Checker errors.
var (
	ErrUnhealthy = errors.New("service is not healthy")
	ErrMismatch  = errors.New("recommendations do not match")
	ErrNoTasks   = errors.New("service has no tasks")
)

// Config holds configuration for a verification run.
type Config struct {
	BaseURL    string        // Base URL of the service
	K          int           // k requested per task
	Workers    int           // Concurrent /recommend requests
	Timeout    time.Duration // Per-request HTTP timeout
	OutputFile string        // Optional JSON report path
	Verbose    bool          // Log every task result
}

// TaskResult is the outcome of checking one task.
type TaskResult struct {
	TaskID     int64    `json:"task_id"`
	Passed     bool     `json:"passed"`
	Expected   int      `json:"expected"`
	Returned   int      `json:"returned"`
	Mismatches []string `json:"mismatches,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Employees    int
	TasksChecked int
	Passed       int
	Failed       int
	Errors       int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Report is the JSON document written to Config.OutputFile.
type Report struct {
	BaseURL   string       `json:"base_url"`
	K         int          `json:"k"`
	Employees int          `json:"employees"`
	Tasks     int          `json:"tasks"`
	Passed    int          `json:"passed"`
	Failed    int          `json:"failed"`
	Errors    int          `json:"errors"`
	Duration  string       `json:"duration"`
	Results   []TaskResult `json:"results"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type statsResponse struct {
	Weights *struct {
		Skill        float64 `json:"skill"`
		Workload     float64 `json:"workload"`
		Availability float64 `json:"availability"`
	} `json:"weights"`
}

// snapshot is the dataset as served by the service.
type snapshot struct {
	employees []model.Employee
	tasks     []model.Task
}

type recommendation = types.Recommendation

// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord marks a record rejected at ingestion.
var ErrInvalidRecord = errors.New("invalid record")

// Employee is a read-only snapshot of one employee row.
type Employee struct {
	ID              int64  `json:"employee_id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	SkillPython     int    `json:"skill_python"`
	SkillML         int    `json:"skill_ml"`
	SkillBackend    int    `json:"skill_backend"`
	SkillFrontend   int    `json:"skill_frontend"`
	CurrentWorkload int    `json:"current_workload"` // percent of capacity in use
	Availability    int    `json:"availability"`     // percent of time free
}

// Validate rejects negative skill, workload or availability values.
// Values above the nominal 5 / 100 ceilings are accepted.
func (e Employee) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"skill_python", e.SkillPython},
		{"skill_ml", e.SkillML},
		{"skill_backend", e.SkillBackend},
		{"skill_frontend", e.SkillFrontend},
		{"current_workload", e.CurrentWorkload},
		{"availability", e.Availability},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%w: employee %d: %s is negative (%d)", ErrInvalidRecord, e.ID, f.name, f.v)
		}
	}
	return nil
}

// Task is a read-only snapshot of one task row. A required level of 0
// means the task has no requirement on that dimension.
type Task struct {
	ID               int64  `json:"task_id"`
	Title            string `json:"title"`
	RequiredPython   int    `json:"required_python"`
	RequiredML       int    `json:"required_ml"`
	RequiredBackend  int    `json:"required_backend"`
	RequiredFrontend int    `json:"required_frontend"`
}

// Validate rejects negative requirement levels.
func (t Task) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"required_python", t.RequiredPython},
		{"required_ml", t.RequiredML},
		{"required_backend", t.RequiredBackend},
		{"required_frontend", t.RequiredFrontend},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%w: task %d: %s is negative (%d)", ErrInvalidRecord, t.ID, f.name, f.v)
		}
	}
	return nil
}

// Package repository provides read access to employees and tasks.
package repository

import (
	"context"

	"github.com/okian/allocator/internal/domain/model"
)

// Store provides read access to the employee and task tables. Records are
// validated at this boundary; callers never see raw rows.
type Store interface {
	// ListEmployees returns every employee ordered by id ascending. The order
	// is part of the contract: ranking ties resolve by it.
	ListEmployees(ctx context.Context) ([]model.Employee, error)

	// ListTasks returns every task ordered by id ascending.
	ListTasks(ctx context.Context) ([]model.Task, error)

	// GetTask returns one task. Returns ErrNotFound if the id is unknown.
	GetTask(ctx context.Context, id int64) (model.Task, error)

	// Ping reports whether the store can serve reads.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Operation names used for metrics labels.
const (
	opListEmployees = "list_employees"
	opListTasks     = "list_tasks"
	opGetTask       = "get_task"
	opPing          = "ping"
)

package repository

import (
	"time"

	"github.com/okian/allocator/internal/domain/model"
)

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithEmployees seeds the store with employees.
func WithEmployees(employees ...model.Employee) MemoryOption {
	return func(s *MemoryStore) {
		s.employees = append(s.employees, employees...)
	}
}

// WithTasks seeds the store with tasks.
func WithTasks(tasks ...model.Task) MemoryOption {
	return func(s *MemoryStore) {
		s.tasks = append(s.tasks, tasks...)
	}
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds every query issued by the store.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithMaxOpenConns caps the connection pool.
func WithMaxOpenConns(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/pkg/metrics"
)

// MemoryStore is an in-memory Store, typically seeded from a YAML dataset.
// Reads return copies, so callers cannot mutate the snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	employees []model.Employee
	tasks     []model.Task
	taskIndex map[int64]int
	closed    bool
}

// NewMemoryStore validates, sorts and indexes the seeded records.
func NewMemoryStore(opts ...MemoryOption) (*MemoryStore, error) {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}

	seenEmp := make(map[int64]struct{}, len(s.employees))
	for _, e := range s.employees {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seenEmp[e.ID]; dup {
			return nil, fmt.Errorf("%w: employee %d", ErrDuplicateID, e.ID)
		}
		seenEmp[e.ID] = struct{}{}
	}

	s.taskIndex = make(map[int64]int, len(s.tasks))
	for _, t := range s.tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.taskIndex[t.ID]; dup {
			return nil, fmt.Errorf("%w: task %d", ErrDuplicateID, t.ID)
		}
		s.taskIndex[t.ID] = -1
	}

	slices.SortStableFunc(s.employees, func(a, b model.Employee) int { return cmpID(a.ID, b.ID) })
	slices.SortStableFunc(s.tasks, func(a, b model.Task) int { return cmpID(a.ID, b.ID) })
	for i, t := range s.tasks {
		s.taskIndex[t.ID] = i
	}
	return s, nil
}

func cmpID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ListEmployees returns a copy of all employees ordered by id.
func (s *MemoryStore) ListEmployees(_ context.Context) ([]model.Employee, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.RecordStoreError(opListEmployees)
		return nil, ErrClosed
	}
	out := slices.Clone(s.employees)
	if out == nil {
		out = []model.Employee{}
	}
	metrics.RecordStoreQuery(opListEmployees, metrics.SinceMs(start))
	return out, nil
}

// ListTasks returns a copy of all tasks ordered by id.
func (s *MemoryStore) ListTasks(_ context.Context) ([]model.Task, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.RecordStoreError(opListTasks)
		return nil, ErrClosed
	}
	out := slices.Clone(s.tasks)
	if out == nil {
		out = []model.Task{}
	}
	metrics.RecordStoreQuery(opListTasks, metrics.SinceMs(start))
	return out, nil
}

// GetTask returns the task with the given id or ErrNotFound.
func (s *MemoryStore) GetTask(_ context.Context, id int64) (model.Task, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.RecordStoreError(opGetTask)
		return model.Task{}, ErrClosed
	}
	i, ok := s.taskIndex[id]
	metrics.RecordStoreQuery(opGetTask, metrics.SinceMs(start))
	if !ok {
		return model.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return s.tasks[i], nil
}

// Ping fails once the store is closed.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed. Subsequent reads fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

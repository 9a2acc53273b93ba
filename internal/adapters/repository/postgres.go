package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/okian/allocator/internal/domain/model"
	"github.com/okian/allocator/pkg/metrics"
)

// Default Postgres settings.
const (
	defaultQueryTimeout = 5 * time.Second
	defaultMaxOpenConns = 10
)

// Queries against the expected schema:
//
//	employees(employee_id, name, role, skill_python, skill_ml, skill_backend,
//	          skill_frontend, current_workload, availability)
//	tasks(task_id, title, required_python, required_ml, required_backend,
//	      required_frontend)
//
// Schema creation and seeding are handled outside this service.
const (
	listEmployeesQuery = `SELECT employee_id, name, role, skill_python, skill_ml, skill_backend,
	skill_frontend, current_workload, availability
FROM employees ORDER BY employee_id`

	listTasksQuery = `SELECT task_id, title, required_python, required_ml, required_backend, required_frontend
FROM tasks ORDER BY task_id`

	getTaskQuery = `SELECT task_id, title, required_python, required_ml, required_backend, required_frontend
FROM tasks WHERE task_id = $1`
)

// PostgresStore implements Store on top of database/sql and lib/pq.
type PostgresStore struct {
	db           *sql.DB
	queryTimeout time.Duration
	maxOpenConns int
}

// NewPostgresStore wraps an existing *sql.DB.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{
		db:           db,
		queryTimeout: defaultQueryTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.db.SetMaxOpenConns(s.maxOpenConns)
	return s
}

// OpenPostgres opens a connection pool for dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := NewPostgresStore(db, opts...)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return s, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (model.Employee, error) {
	var (
		e          model.Employee
		name, role sql.NullString
	)
	if err := r.Scan(&e.ID, &name, &role, &e.SkillPython, &e.SkillML, &e.SkillBackend,
		&e.SkillFrontend, &e.CurrentWorkload, &e.Availability); err != nil {
		return model.Employee{}, err
	}
	e.Name, e.Role = name.String, role.String
	return e, e.Validate()
}

func scanTask(r rowScanner) (model.Task, error) {
	var (
		t     model.Task
		title sql.NullString
	)
	if err := r.Scan(&t.ID, &title, &t.RequiredPython, &t.RequiredML, &t.RequiredBackend, &t.RequiredFrontend); err != nil {
		return model.Task{}, err
	}
	t.Title = title.String
	return t, t.Validate()
}

// ListEmployees returns all employees ordered by employee_id.
func (s *PostgresStore) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, listEmployeesQuery)
	if err != nil {
		metrics.RecordStoreError(opListEmployees)
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			metrics.RecordStoreError(opListEmployees)
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError(opListEmployees)
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	metrics.RecordStoreQuery(opListEmployees, metrics.SinceMs(start))
	return out, nil
}

// ListTasks returns all tasks ordered by task_id.
func (s *PostgresStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, listTasksQuery)
	if err != nil {
		metrics.RecordStoreError(opListTasks)
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			metrics.RecordStoreError(opListTasks)
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError(opListTasks)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	metrics.RecordStoreQuery(opListTasks, metrics.SinceMs(start))
	return out, nil
}

// GetTask returns one task or ErrNotFound.
func (s *PostgresStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	start := time.Now()

	t, err := scanTask(s.db.QueryRowContext(ctx, getTaskQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordStoreQuery(opGetTask, metrics.SinceMs(start))
		return model.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		metrics.RecordStoreError(opGetTask)
		return model.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	metrics.RecordStoreQuery(opGetTask, metrics.SinceMs(start))
	return t, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		metrics.RecordStoreError(opPing)
		return err
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

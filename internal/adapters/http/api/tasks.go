package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	repository "github.com/okian/allocator/internal/adapters/repository"
	"github.com/okian/allocator/internal/domain/model"
)

// TasksDependencies defines the interface for task reads.
type TasksDependencies interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
}

// TasksHandler handles task requests.
type TasksHandler struct {
	deps TasksDependencies
}

// NewTasksHandler creates a new tasks handler.
func NewTasksHandler(deps TasksDependencies) *TasksHandler {
	return &TasksHandler{deps: deps}
}

// HandleList handles GET /tasks requests.
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_tasks"
	if !allowGet(w, r) {
		return
	}
	tasks, err := h.deps.ListTasks(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /tasks/{task_id} requests.
func (h *TasksHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_task"
	if !allowGet(w, r) {
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/tasks/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || strings.Contains(raw, "/") || err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest, msgInvalidTaskID))
		return
	}
	task, err := h.deps.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

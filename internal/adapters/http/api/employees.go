package api

import (
	"context"
	"net/http"

	"github.com/okian/allocator/internal/domain/model"
)

// EmployeesDependencies defines the interface for employee reads.
type EmployeesDependencies interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
}

// EmployeesHandler handles employee requests.
type EmployeesHandler struct {
	deps EmployeesDependencies
}

// NewEmployeesHandler creates a new employees handler.
func NewEmployeesHandler(deps EmployeesDependencies) *EmployeesHandler {
	return &EmployeesHandler{deps: deps}
}

// HandleList handles GET /employees requests.
func (h *EmployeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_employees"
	if !allowGet(w, r) {
		return
	}
	emps, err := h.deps.ListEmployees(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, emps)
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	repository "github.com/okian/allocator/internal/adapters/repository"
	service "github.com/okian/allocator/internal/app"
)

// RecommendDependencies defines the interface for recommendation queries.
type RecommendDependencies interface {
	Recommend(ctx context.Context, taskID int64, k int) (Recommendation, error)
}

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps     RecommendDependencies
	defaultK int
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps RecommendDependencies, defaultK int) *RecommendHandler {
	return &RecommendHandler{deps: deps, defaultK: defaultK}
}

// HandleRecommend handles GET /recommend?task_id=N&k=M requests.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	if !allowGet(w, r) {
		return
	}

	q := r.URL.Query()
	rawTaskID := q.Get("task_id")
	if rawTaskID == "" {
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest, msgMissingTaskID))
		return
	}
	taskID, err := strconv.ParseInt(rawTaskID, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest, msgInvalidTaskID))
		return
	}

	k := h.defaultK
	if rawK := q.Get("k"); rawK != "" {
		if k, err = strconv.Atoi(rawK); err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest, msgInvalidK))
			return
		}
	}

	rec, err := h.deps.Recommend(r.Context(), taskID, k)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rec)
	case errors.Is(err, service.ErrKOutOfRange):
		writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest, msgKOutOfRange))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", Wrap(op, err))
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

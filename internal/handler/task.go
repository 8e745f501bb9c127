package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service  *service.TaskService
	validate *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc, validate: validator.New()}
}

// HandleCreate handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	var req model.CreateTaskRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.service.Create(r.Context(), principal.UserID, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDueDate) {
			writeError(w, http.StatusBadRequest, kindValidation, err.Error())
			return
		}
		slog.Error("task create failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleList handles GET /api/tasks requests. sort_by and sort_order are
// validated against their closed sets here; nothing unrecognized reaches
// the query layer.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	params := r.URL.Query()
	q := model.ListTasksQuery{
		Search:    params.Get("search"),
		Category:  params.Get("category"),
		Priority:  params.Get("priority"),
		SortBy:    "created_at",
		SortOrder: "desc",
	}
	if v := params.Get("sort_by"); v != "" {
		q.SortBy = v
	}
	if v := params.Get("sort_order"); v != "" {
		q.SortOrder = v
	}
	if v := params.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, kindValidation, "completed must be a boolean")
			return
		}
		q.Completed = &completed
	}

	if err := h.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.service.List(r.Context(), principal.UserID, q)
	if err != nil {
		slog.Error("task list failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	if resp == nil {
		resp = []model.TaskResponse{}
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleStats handles GET /api/tasks/stats requests.
func (h *TaskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	stats, err := h.service.Stats(r.Context(), principal.UserID)
	if err != nil {
		slog.Error("task stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleCategories handles GET /api/tasks/categories requests.
func (h *TaskHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	categories, err := h.service.Categories(r.Context(), principal.UserID)
	if err != nil {
		slog.Error("task categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// HandleGet handles GET /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	resp, err := h.service.Get(r.Context(), principal.UserID, chi.URLParam(r, "task_id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "task not found")
			return
		}
		slog.Error("task get failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	var req model.UpdateTaskRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.service.Update(r.Context(), principal.UserID, chi.URLParam(r, "task_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			writeError(w, http.StatusNotFound, kindNotFound, "task not found")
		case errors.Is(err, service.ErrInvalidDueDate):
			writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		default:
			slog.Error("task update failed", "error", err)
			writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "unauthorized")
		return
	}

	err := h.service.Delete(r.Context(), principal.UserID, chi.URLParam(r, "task_id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, kindNotFound, "task not found")
			return
		}
		slog.Error("task delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// StatusHandler handles the legacy status-check endpoints.
type StatusHandler struct {
	service  *service.StatusService
	validate *validator.Validate
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(svc *service.StatusService) *StatusHandler {
	return &StatusHandler{service: svc, validate: validator.New()}
}

// HandleCreate handles POST /api/status requests.
func (h *StatusHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateStatusCheckRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	check, err := h.service.Record(r.Context(), req.ClientName)
	if err != nil {
		slog.Error("status check failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, check)
}

// HandleList handles GET /api/status requests.
func (h *StatusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	checks, err := h.service.Recent(r.Context())
	if err != nil {
		slog.Error("status list failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	if checks == nil {
		checks = []model.StatusCheck{}
	}

	writeJSON(w, http.StatusOK, checks)
}

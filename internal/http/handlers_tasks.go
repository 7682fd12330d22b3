package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/OnTrak-Tech/TaskBuddy/internal/apiclient"
	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
)

// TaskHandlers serves the regular-user task views. They are thin: fetch
// through the credentialed client, attach collected notices, render JSON
// for the view layer.
type TaskHandlers struct {
	API    *apiclient.Client
	Logger *slog.Logger
}

// List serves GET /tasks.
func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.API.ListTasks(r.Context())
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"tasks":   tasks,
		"notices": TakeNotices(r.Context()),
	})
}

// Detail serves GET /tasks/{id}.
func (h *TaskHandlers) Detail(w http.ResponseWriter, r *http.Request) {
	task, err := h.API.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"task":    task,
		"notices": TakeNotices(r.Context()),
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateStatus serves POST /tasks/{id}/status for assignees moving their
// tasks through the lifecycle.
func (h *TaskHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_status",
			Err:     errors.New("status is required"),
		})
		return
	}

	task, err := h.API.UpdateTaskStatus(r.Context(), r.PathValue("id"), req.Status,
		apiclient.WithSuccessNotice("Task updated"),
		apiclient.WithErrorNotice("Failed to update task"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"task":    task,
		"notices": TakeNotices(r.Context()),
	})
}

// Stats serves GET /tasks/stats, the signed-in user's dashboard numbers.
func (h *TaskHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.API.GetTaskStats(r.Context())
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"stats":   stats,
		"notices": TakeNotices(r.Context()),
	})
}

// Profile serves GET /profile from the resolved auth state; no backend
// call is needed.
func (h *TaskHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	state := AuthStateFromContext(r.Context())
	WriteJSON(w, http.StatusOK, map[string]any{
		"user": state.Principal,
		"role": state.Role,
	})
}

// writeBackendFailure normalizes errors from the credentialed client.
// The error taxonomy maps onto transport-level statuses; backend errors
// pass through with their original status.
func writeBackendFailure(w http.ResponseWriter, r *http.Request, err error) {
	var be *apiclient.BackendError
	switch {
	case errors.Is(err, domainauth.ErrUnauthenticated):
		if isBrowserRequest(r) {
			redirectToLogin(w, r)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
	case errors.As(err, &be):
		WriteError(w, ErrorParams{
			Code:    be.Status,
			ErrCode: "backend_error",
			Err:     be,
		})
	case errors.Is(err, domainauth.ErrTransportFailure):
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "backend_unreachable",
			Err:     err,
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     err,
		})
	}
}

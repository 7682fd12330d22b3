package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/OnTrak-Tech/TaskBuddy/internal/apiclient"
)

// AdminHandlers serves the administrator views: the dashboard, task
// management, and the user directory.
type AdminHandlers struct {
	API    *apiclient.Client
	Logger *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Dashboard serves GET /, the administrator landing page. Stats, the task
// list, and the user directory are fetched concurrently; stats are
// required, the others degrade to empty sections.
func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		stats apiclient.TaskStats
		tasks []apiclient.Task
		users []apiclient.User
	)

	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		stats, err = h.API.GetTaskStats(gctx)
		return err
	})
	g.Go(func() error {
		t, err := h.API.ListTasks(gctx)
		if err != nil {
			h.logger().WarnContext(gctx, "dashboard task list unavailable", "error", err)
			return nil
		}
		tasks = t
		return nil
	})
	g.Go(func() error {
		u, err := h.API.ListUsers(gctx)
		if err != nil {
			h.logger().WarnContext(gctx, "dashboard user list unavailable", "error", err)
			return nil
		}
		users = u
		return nil
	})

	if err := g.Wait(); err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"stats":   stats,
		"tasks":   tasks,
		"users":   users,
		"notices": TakeNotices(r.Context()),
	})
}

// Tasks serves GET /admin/tasks.
func (h *AdminHandlers) Tasks(w http.ResponseWriter, r *http.Request) {
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

// CreateTask serves POST /admin/tasks/create.
func (h *AdminHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in apiclient.CreateTaskInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.Title == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_title",
			Err:     errors.New("title is required"),
		})
		return
	}

	task, err := h.API.CreateTask(r.Context(), in,
		apiclient.WithSuccessNotice("Task created successfully"),
		apiclient.WithErrorNotice("Failed to create task"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"task":    task,
		"notices": TakeNotices(r.Context()),
	})
}

// Users serves GET /admin/users.
func (h *AdminHandlers) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.API.ListUsers(r.Context())
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"users":   users,
		"notices": TakeNotices(r.Context()),
	})
}

// UserDetail serves GET /admin/users/{id}.
func (h *AdminHandlers) UserDetail(w http.ResponseWriter, r *http.Request) {
	user, err := h.API.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"notices": TakeNotices(r.Context()),
	})
}

// CreateUser serves POST /admin/users/create.
func (h *AdminHandlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in apiclient.CreateUserInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	if in.Username == "" || in.Email == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_fields",
			Err:     errors.New("username and email are required"),
		})
		return
	}

	user, err := h.API.CreateUser(r.Context(), in,
		apiclient.WithSuccessNotice("User created successfully"),
		apiclient.WithErrorNotice("Failed to create user"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"notices": TakeNotices(r.Context()),
	})
}

// DeleteUser serves POST /admin/users/{id}/delete.
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.API.DeleteUser(r.Context(), r.PathValue("id"),
		apiclient.WithSuccessNotice("User deleted"),
		apiclient.WithErrorNotice("Failed to delete user"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"notices": TakeNotices(r.Context()),
	})
}

// ResetPassword serves POST /admin/users/{username}/reset-password.
func (h *AdminHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	err := h.API.ResetUserPassword(r.Context(), username,
		apiclient.WithSuccessNotice("Password reset initiated"),
		apiclient.WithErrorNotice("Failed to reset password"))
	if err != nil {
		writeBackendFailure(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"notices": TakeNotices(r.Context()),
	})
}

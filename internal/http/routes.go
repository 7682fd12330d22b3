package httpx

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/OnTrak-Tech/TaskBuddy/internal/apiclient"
	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Registry     *service.StoreRegistry
	API          *apiclient.Client
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter builds the route tree. Every page route carries an access
// constraint; requests that fail it are redirected (browser) or rejected
// (API client) by the Require middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Registry:     services.Registry,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	taskHandlers := &TaskHandlers{API: services.API, Logger: services.Logger}
	adminHandlers := &AdminHandlers{API: services.API, Logger: services.Logger}

	registerAuthRoutes(mux, authHandlers)
	registerAdminRoutes(mux, adminHandlers)
	registerTaskRoutes(mux, taskHandlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	// Wrap with the catch-all handler so unmatched paths get a uniform 404.
	return &notFoundHandler{mux: mux}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	publicOnly := Require(domainauth.ConstraintPublicOnly)
	mux.Handle("GET /login", publicOnly(http.HandlerFunc(h.LoginShow)))
	mux.Handle("POST /login", publicOnly(http.HandlerFunc(h.LoginSubmit)))

	// Logout and status are reachable in any auth phase.
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

// registerAdminRoutes wires the administrator pages. The dashboard lives at
// the site root; everything else sits under /admin.
func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers) {
	adminOnly := Require(domainauth.ConstraintAdministrator)

	mux.Handle("GET /{$}", adminOnly(http.HandlerFunc(h.Dashboard)))
	mux.Handle("GET /admin/tasks", adminOnly(http.HandlerFunc(h.Tasks)))
	mux.Handle("POST /admin/tasks/create", adminOnly(http.HandlerFunc(h.CreateTask)))
	mux.Handle("GET /admin/users", adminOnly(http.HandlerFunc(h.Users)))
	mux.Handle("POST /admin/users/create", adminOnly(http.HandlerFunc(h.CreateUser)))
	mux.Handle("GET /admin/users/{id}", adminOnly(http.HandlerFunc(h.UserDetail)))
	mux.Handle("POST /admin/users/{id}/delete", adminOnly(http.HandlerFunc(h.DeleteUser)))
	mux.Handle("POST /admin/users/{username}/reset-password", adminOnly(http.HandlerFunc(h.ResetPassword)))
}

func registerTaskRoutes(mux *http.ServeMux, h *TaskHandlers) {
	userOnly := Require(domainauth.ConstraintRegularUser)
	anyAuth := Require(domainauth.ConstraintAnyAuthenticated)

	mux.Handle("GET /tasks", userOnly(http.HandlerFunc(h.List)))
	mux.Handle("GET /tasks/stats", userOnly(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /tasks/{id}", userOnly(http.HandlerFunc(h.Detail)))
	mux.Handle("POST /tasks/{id}/status", userOnly(http.HandlerFunc(h.UpdateStatus)))
	mux.Handle("GET /dashboard", userOnly(http.HandlerFunc(redirectTasks)))

	mux.Handle("GET /profile", anyAuth(http.HandlerFunc(h.Profile)))
}

// redirectTasks sends regular users from the legacy dashboard path to their
// task list.
func redirectTasks(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// notFoundHandler wraps a ServeMux and replaces the default text 404 with a
// structured response, so unknown paths behave the same as known ones.
type notFoundHandler struct {
	mux *http.ServeMux
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter(w)
	h.mux.ServeHTTP(cw, r)

	if cw.status == http.StatusNotFound && !strings.Contains(cw.header.Get("Content-Type"), "json") {
		notFound(w, r)
		return
	}

	cw.flushTo(w)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]any{
		"error": "not_found",
		"path":  r.URL.Path,
	})
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}

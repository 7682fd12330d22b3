package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

const sessionCookieName = "session_id"

// Session returns a middleware that establishes the browser session
// handle. Every request gets a handle (existing cookie or a fresh one),
// its AuthStore from the registry, and the resolved auth state in context.
func Session(registry *service.StoreRegistry, cookieDomain string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle := handleFromRequest(r)
			if handle == "" {
				handle = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    handle,
					Path:     "/",
					Domain:   cookieDomain,
					HttpOnly: true,
					Secure:   secure || requestIsTLS(r),
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := ports.WithSessionHandle(r.Context(), handle)
			store := registry.Get(handle)
			state := store.Resolve(ctx)

			ctx = withAuthStore(ctx, store)
			ctx = withAuthState(ctx, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func handleFromRequest(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	if _, parseErr := uuid.Parse(c.Value); parseErr != nil {
		return ""
	}
	return c.Value
}

func requestIsTLS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// Require returns a middleware gating the wrapped handler behind a route
// constraint. Browser requests get redirects per the guard decision; API
// requests get 401/403 JSON. RenderPending answers 503 with Retry-After
// since a server-side resolution never stays in flight across requests.
func Require(constraint domainauth.Constraint) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := AuthStateFromContext(r.Context())

			switch domainauth.Decide(state, constraint) {
			case domainauth.RenderChild:
				next.ServeHTTP(w, r)
			case domainauth.RenderPending:
				w.Header().Set("Retry-After", "1")
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "auth_pending",
					Err:     errors.New("authentication state is resolving"),
				})
			case domainauth.RedirectToLogin:
				if isBrowserRequest(r) {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
			case domainauth.RedirectToDefault:
				if isBrowserRequest(r) {
					http.Redirect(w, r, domainauth.DefaultLanding(state.Role), http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
			}
		})
	}
}

// isBrowserRequest determines if a request is from a browser based on:
// 1. Path prefix - API routes start with /api/
// 2. Accept header - browsers typically accept text/html
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		// No Accept header, assume browser for non-API routes
		return true
	}
	return strings.Contains(accept, "text/html")
}

// redirectToLogin redirects browser requests to the login page with the
// current URL preserved as redirect_uri. Notices collected before the
// bounce (a failed backend call, an expired session) ride along as flash
// so the login view can show them.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	FlashRedirect(w, r, loginURLFor(r.URL.RequestURI()))
}

// safeRedirectPath accepts only same-app relative paths. Absolute URLs,
// scheme-relative references, and anything not starting with "/" are
// rejected to keep post-login redirects inside the application.
func safeRedirectPath(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return ""
	}
	return raw
}

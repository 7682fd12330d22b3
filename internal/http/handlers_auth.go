package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Registry     *service.StoreRegistry
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LoginShow describes the login view.
// GET /login?redirect_uri=<optional_redirect>.
// The PublicOnly guard has already bounced signed-in visitors.
func (h *AuthHandlers) LoginShow(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	WriteJSON(w, http.StatusOK, map[string]any{
		"view":         "login",
		"redirect_uri": redirectURI,
		"notices":      ReadFlash(w, r),
	})
}

type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	RedirectURI string `json:"redirect_uri"`
}

// LoginSubmit signs the visitor in.
// POST /login with a JSON or form body of username/password and an
// optional redirect_uri preserved by the guard.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readLoginRequest(w, r)
	if !ok {
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_credentials",
			Err:     errors.New("username and password are required"),
		})
		return
	}

	store, ok := AuthStoreFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "no_session",
			Err:     errors.New("session middleware did not run"),
		})
		return
	}

	state, err := store.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger().InfoContext(r.Context(), "sign-in rejected",
			"username", req.Username, "reason", err)
		WriteError(w, ErrorParams{
			Code:    signInStatus(err),
			ErrCode: "sign_in_failed",
			Err:     errors.New(signInMessage(err)),
		})
		return
	}

	destination := safeRedirectPath(req.RedirectURI)
	if destination == "" {
		destination = domainauth.DefaultLanding(state.Role)
	}

	if isBrowserRequest(r) {
		FlashRedirect(w, r, destination)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          state.Principal,
		"role":          state.Role,
		"redirect_to":   destination,
	})
}

// Logout signs the visitor out. Always succeeds: the session cookie is
// cleared and the store evicted even when provider revocation fails.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := AuthStoreFromContext(r.Context()); ok {
		store.SignOut(r.Context())
	}
	if handle, ok := ports.SessionHandle(r.Context()); ok {
		h.Registry.Evict(handle)
	}
	h.clearCookie(w, r, sessionCookieName)

	if isBrowserRequest(r) {
		CtxNotifier{}.Success(r.Context(), "Signed out successfully")
		FlashRedirect(w, r, "/login")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"redirect_to": "/login",
	})
}

// Status returns the current authentication state.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	state := AuthStateFromContext(r.Context())
	if !state.Authenticated() {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          state.Principal,
		"role":          state.Role,
	})
}

func (h *AuthHandlers) readLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if !DecodeJSON(w, r, &req) {
			return req, false
		}
		return req, true
	}
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_form",
			Err:     err,
		})
		return req, false
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	req.RedirectURI = r.PostFormValue("redirect_uri")
	return req, true
}

// signInMessage maps taxonomy errors to the messages the login view shows
// inline.
func signInMessage(err error) string {
	switch {
	case errors.Is(err, domainauth.ErrUserNotConfirmed):
		return "Please confirm your account first"
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		return "Incorrect username or password"
	case errors.Is(err, domainauth.ErrUserNotFound):
		return "User does not exist"
	default:
		return "Failed to sign in. Please try again."
	}
}

func signInStatus(err error) int {
	if errors.Is(err, domainauth.ErrTransportFailure) {
		return http.StatusBadGateway
	}
	return http.StatusUnauthorized
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when
// setting cookies to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   requestIsTLS(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// loginURLFor builds the login URL preserving the given destination.
func loginURLFor(destination string) string {
	destination = safeRedirectPath(destination)
	if destination == "" {
		return "/login"
	}
	return "/login?redirect_uri=" + url.QueryEscape(destination)
}

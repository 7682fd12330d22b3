package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OnTrak-Tech/TaskBuddy/internal/apiclient"
	mockauth "github.com/OnTrak-Tech/TaskBuddy/internal/mocks/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// testApp wires the full handler stack against a mock identity provider
// and a canned backend, the way the bootstrap package assembles it.
type testApp struct {
	Provider *mockauth.MockIdentityProvider
	Registry *service.StoreRegistry
	Backend  *httptest.Server
	Server   *httptest.Server
	Client   *http.Client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	provider := mockauth.NewMockIdentityProvider()
	registry, err := service.NewStoreRegistry(service.AuthStoreOptions{
		Provider: provider,
		Roles:    mockauth.StaticRoleMapper{AdminGroup: "admin"},
	})
	require.NoError(t, err)

	backend := httptest.NewServer(http.HandlerFunc(cannedBackend))
	t.Cleanup(backend.Close)

	api, err := apiclient.NewClient(apiclient.ClientOptions{
		BaseEndpoint: backend.URL,
		Provider:     provider,
		Notifier:     CtxNotifier{},
	})
	require.NoError(t, err)

	logger := discardLogger()

	router := NewRouter(RouterServices{
		Registry: registry,
		API:      api,
		Logger:   logger,
	})

	h := router
	h = Session(registry, "", false)(h)
	h = Notify()(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := &http.Client{
		Jar: jar,
		// Redirects are asserted, not followed.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{
		Provider: provider,
		Registry: registry,
		Backend:  backend,
		Server:   server,
		Client:   client,
	}
}

// cannedBackend serves minimal fixtures for the downstream API paths used
// by the page handlers.
func cannedBackend(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/tasks/stats":
		_, _ = w.Write([]byte(`{"total":3,"completed":1,"inProgress":1,"pending":1}`))
	case r.URL.Path == "/tasks" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`[{"id":"t1","title":"Write report","status":"pending"}]`))
	case strings.HasPrefix(r.URL.Path, "/tasks/") && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`{"id":"t1","title":"Write report","status":"pending"}`))
	case strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPut:
		_, _ = w.Write([]byte(`{"id":"t1","title":"Write report","status":"completed"}`))
	case r.URL.Path == "/admin/users" && r.Method == http.MethodGet:
		_, _ = w.Write([]byte(`[{"id":"u1","username":"alice","email":"alice@example.com"}]`))
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}
}

// get issues a GET as a browser (Accept: text/html) and returns the response.
func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.Server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")
	resp, err := a.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// getJSON issues a GET with a JSON Accept header and decodes the body.
func (a *testApp) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.Server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err := a.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// postForm submits a browser form POST.
func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.Server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	resp, err := a.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// signInAs performs a login for the given groups and leaves the session
// cookie in the client jar.
func (a *testApp) signInAs(t *testing.T, username string, groups []string) {
	t.Helper()
	a.Provider.DefaultGroups = groups
	a.Provider.DefaultPrincipal.Username = username
	resp := a.postForm(t, "/login", url.Values{
		"username": {username},
		"password": {"correct-horse"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

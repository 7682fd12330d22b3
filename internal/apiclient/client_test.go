package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	mocksauth "github.com/OnTrak-Tech/TaskBuddy/internal/mocks/auth"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *mocksauth.MockIdentityProvider, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := mocksauth.NewMockIdentityProvider()
	provider.SignedIn = true
	provider.Credential = "token-abc"

	client, err := NewClient(ClientOptions{
		BaseEndpoint: srv.URL,
		Provider:     provider,
	})
	require.NoError(t, err)
	return client, provider, srv
}

func TestClient_BearerAndJSONHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotAdminHeader, gotUserHeader string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAdminHeader = r.Header.Get("x-admin-access")
		gotUserHeader = r.Header.Get("x-user-id")
		w.Write([]byte(`{"ok":true}`))
	}))

	err := client.Post(context.Background(), "/tasks", map[string]string{"title": "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	// Identity travels only in the bearer token.
	assert.Empty(t, gotAdminHeader)
	assert.Empty(t, gotUserHeader)
}

func TestClient_FreshSessionPerCall(t *testing.T) {
	client, provider, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, client.Get(context.Background(), "/tasks", nil))
	require.NoError(t, client.Get(context.Background(), "/tasks", nil))
	require.NoError(t, client.Get(context.Background(), "/tasks", nil))
	assert.Equal(t, 3, provider.SessionCalls)
}

func TestClient_UnauthenticatedPreflight(t *testing.T) {
	var hits atomic.Int32
	client, provider, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	provider.SignedIn = false

	err := client.Get(context.Background(), "/tasks", nil)
	assert.ErrorIs(t, err, domainauth.ErrUnauthenticated)
	assert.Zero(t, hits.Load(), "no network call expected without a session")
}

func TestClient_BackendError(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"nope"}`))
	}))

	err := client.Get(context.Background(), "/admin/users", nil)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusForbidden, be.Status)
	assert.JSONEq(t, `{"message":"nope"}`, string(be.Payload))
}

func TestClient_TransportFailure(t *testing.T) {
	client, _, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := client.Get(context.Background(), "/tasks", nil)
	assert.ErrorIs(t, err, domainauth.ErrTransportFailure)
}

func TestClient_Cancellation(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.Get(ctx, "/tasks", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_NoRetry(t *testing.T) {
	var hits atomic.Int32
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_ = client.Get(context.Background(), "/tasks", nil)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_Notices(t *testing.T) {
	client, provider, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	notifier := &mocksauth.RecordingNotifier{}
	client.notifier = notifier
	_ = provider

	require.NoError(t, client.Post(context.Background(), "/tasks", map[string]string{}, nil,
		WithSuccessNotice("Task created successfully")))
	assert.Equal(t, []string{"Task created successfully"}, notifier.Successes)

	err := client.Get(context.Background(), "/fail", nil, WithErrorNotice("Something went wrong"))
	assert.Error(t, err)
	assert.Equal(t, []string{"Something went wrong"}, notifier.Errors)

	// Without options, nothing is surfaced.
	require.NoError(t, client.Get(context.Background(), "/tasks", nil))
	assert.Len(t, notifier.Successes, 1)
	assert.Len(t, notifier.Errors, 1)
}

func TestClient_TypedEndpoints(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /tasks":
			json.NewEncoder(w).Encode([]Task{{ID: "t1", Title: "Ship it", Status: "pending"}})
		case "PUT /tasks/t1/status":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(Task{ID: "t1", Status: body["status"]})
		case "GET /admin/users":
			json.NewEncoder(w).Encode([]User{{ID: "u1", Username: "ada"}})
		case "POST /admin/users/ada/reset-password":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	tasks, err := client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship it", tasks[0].Title)

	task, err := client.UpdateTaskStatus(ctx, "t1", "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", task.Status)

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0].Username)

	require.NoError(t, client.ResetUserPassword(ctx, "ada"))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{Provider: mocksauth.NewMockIdentityProvider()})
	assert.Error(t, err)
	_, err = NewClient(ClientOptions{BaseEndpoint: "http://x"})
	assert.Error(t, err)
}

func TestBackendError_Error(t *testing.T) {
	e := &BackendError{Status: 502}
	assert.Contains(t, e.Error(), "502")
	e = &BackendError{Status: 400, Payload: []byte(`bad`)}
	assert.Contains(t, e.Error(), "bad")
	assert.True(t, errors.As(error(e), new(*BackendError)))
}

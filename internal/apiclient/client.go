package apiclient

// Package apiclient is the credentialed HTTP client for the TaskBuddy
// backend API. Every call fetches fresh session material from the
// identity provider; bearer credentials are never cached between calls.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// BackendError is a non-2xx response from the backend. Payload holds the
// raw response body for the caller to interpret.
type BackendError struct {
	Status  int
	Payload []byte
}

func (e *BackendError) Error() string {
	if len(e.Payload) == 0 {
		return fmt.Sprintf("backend responded %d", e.Status)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Payload)
}

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// BaseEndpoint is the backend root URL; trailing slash is trimmed.
	BaseEndpoint string
	Provider     ports.IdentityProvider
	// Notifier surfaces optional per-call notices. Nil disables them.
	Notifier ports.Notifier
	// HTTPClient defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// Client issues authenticated JSON requests against the backend.
// It never retries and never deduplicates; in-flight cancellation is the
// caller's context.
type Client struct {
	base       string
	provider   ports.IdentityProvider
	notifier   ports.Notifier
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseEndpoint == "" {
		return nil, errors.New("base endpoint is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		base:       strings.TrimRight(opts.BaseEndpoint, "/"),
		provider:   opts.Provider,
		notifier:   opts.Notifier,
		httpClient: httpClient,
	}, nil
}

// CallOption customizes a single call.
type CallOption func(*callOptions)

type callOptions struct {
	successNotice string
	errorNotice   string
}

// WithSuccessNotice surfaces message through the notifier when the call
// succeeds.
func WithSuccessNotice(message string) CallOption {
	return func(o *callOptions) { o.successNotice = message }
}

// WithErrorNotice surfaces message through the notifier when the call
// fails for any reason.
func WithErrorNotice(message string) CallOption {
	return func(o *callOptions) { o.errorNotice = message }
}

// Get issues a GET and decodes the response into out (ignored when nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete issues a DELETE and decodes the response into out (ignored when nil).
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	err := c.doOnce(ctx, method, path, body, out)
	if err != nil {
		if co.errorNotice != "" && c.notifier != nil {
			c.notifier.Error(ctx, co.errorNotice)
		}
		return err
	}
	if co.successNotice != "" && c.notifier != nil {
		c.notifier.Success(ctx, co.successNotice)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	// Preflight: a fresh credential per call. Signed-out callers are
	// rejected before any network traffic.
	session, err := c.provider.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, domainauth.ErrNoSession) {
			return domainauth.ErrUnauthenticated
		}
		return fmt.Errorf("fetch session: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("marshal request body: %w", marshalErr)
		}
		reqBody = bytes.NewReader(data)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessCredential)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, path, domainauth.ErrTransportFailure)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &BackendError{Status: resp.StatusCode, Payload: payload}
	}

	if out != nil && len(payload) > 0 {
		if unmarshalErr := json.Unmarshal(payload, out); unmarshalErr != nil {
			return fmt.Errorf("decode response: %w", unmarshalErr)
		}
	}
	return nil
}

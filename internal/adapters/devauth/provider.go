package devauth

// Package devauth provides a simple, config-driven IdentityProvider for
// local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/OnTrak-Tech/TaskBuddy/internal/domain/auth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// Config controls the dev auth provider behavior.
// Username, Email and Password are required; Groups may be empty.
type Config struct {
	Username        string
	Email           string
	Password        string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.IdentityProvider for local development.
// SignIn accepts exactly the configured username/password pair; the
// resulting session is tracked per browser session handle in memory.
type Provider struct {
	cfg       Config
	principal domainauth.Principal

	mu       sync.Mutex
	sessions map[string]time.Time // handle -> expiry
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Username == "" {
		return nil, errors.New("dev auth: Username is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 8 * time.Hour
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{
		cfg: cfg,
		principal: domainauth.Principal{
			Username:    cfg.Username,
			Email:       cfg.Email,
			DisplayName: cfg.Username,
		},
		sessions: make(map[string]time.Time),
	}, nil
}

func (p *Provider) CurrentPrincipal(ctx context.Context) (domainauth.Principal, error) {
	if _, err := p.CurrentSession(ctx); err != nil {
		return domainauth.Principal{}, err
	}
	return p.principal, nil
}

func (p *Provider) CurrentSession(ctx context.Context) (domainauth.Session, error) {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return domainauth.Session{}, domainauth.ErrNoSession
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	expiresAt, ok := p.sessions[handle]
	if !ok {
		return domainauth.Session{}, domainauth.ErrNoSession
	}
	if time.Now().After(expiresAt) {
		// Silent renewal, mirroring a provider refresh grant.
		expiresAt = time.Now().Add(p.cfg.SessionDuration)
		p.sessions[handle] = expiresAt
	}

	cred, err := randomString(32)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate credential: %w", err)
	}
	return domainauth.Session{
		AccessCredential: "dev-" + cred,
		GroupClaims:      append([]string(nil), p.cfg.Groups...),
		ExpiresAt:        expiresAt,
	}, nil
}

func (p *Provider) SignIn(ctx context.Context, username, password string) (domainauth.Principal, error) {
	if username != p.cfg.Username {
		return domainauth.Principal{}, domainauth.ErrUserNotFound
	}
	if password != p.cfg.Password {
		return domainauth.Principal{}, domainauth.ErrInvalidCredentials
	}

	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return domainauth.Principal{}, errors.New("dev auth: no session handle in context")
	}

	p.mu.Lock()
	p.sessions[handle] = time.Now().Add(p.cfg.SessionDuration)
	p.mu.Unlock()

	return p.principal, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	handle, ok := ports.SessionHandle(ctx)
	if !ok {
		return nil
	}
	p.mu.Lock()
	delete(p.sessions, handle)
	p.mu.Unlock()
	return nil
}

var _ ports.IdentityProvider = (*Provider)(nil)

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}

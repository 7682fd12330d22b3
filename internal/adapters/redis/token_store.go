package redis

// Package redis provides the Redis-backed token store used in production.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
)

// TokenStore persists provider token material keyed by browser session
// handle. TTL follows the refresh window, not the access token expiry, so
// silent renewal keeps working across short-lived credentials.
type TokenStore struct {
	client     redis.UniversalClient
	prefix     string
	refreshTTL time.Duration
}

// NewTokenStore creates a Redis-backed token store. refreshTTL bounds how
// long a handle stays resolvable; zero means 30 days.
func NewTokenStore(client redis.UniversalClient, refreshTTL time.Duration) *TokenStore {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenStore{
		client:     client,
		prefix:     "tokens:",
		refreshTTL: refreshTTL,
	}
}

// NewTokenStoreWithPrefix creates a token store with a custom key prefix.
func NewTokenStoreWithPrefix(client redis.UniversalClient, refreshTTL time.Duration, prefix string) *TokenStore {
	ts := NewTokenStore(client, refreshTTL)
	ts.prefix = prefix
	return ts
}

func (s *TokenStore) Save(ctx context.Context, handle string, ts ports.TokenSet) error {
	if handle == "" {
		return errors.New("token handle cannot be empty")
	}

	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("marshal token set: %w", err)
	}

	ttl := s.refreshTTL
	if ts.RefreshToken == "" {
		// No renewal possible; keep only until the credential expires.
		ttl = time.Until(ts.ExpiresAt)
		if ttl <= 0 {
			return errors.New("token set is expired")
		}
	}

	return s.client.Set(ctx, s.prefix+handle, data, ttl).Err()
}

func (s *TokenStore) Get(ctx context.Context, handle string) (ports.TokenSet, error) {
	if handle == "" {
		return ports.TokenSet{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+handle).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.TokenSet{}, ErrNotFound
		}
		return ports.TokenSet{}, fmt.Errorf("redis get: %w", err)
	}

	var ts ports.TokenSet
	if unmarshalErr := json.Unmarshal([]byte(data), &ts); unmarshalErr != nil {
		return ports.TokenSet{}, fmt.Errorf("unmarshal token set: %w", unmarshalErr)
	}

	// Non-renewable sets can outlive their credential if clocks drift
	// relative to the Redis TTL; re-check before handing them out.
	if ts.RefreshToken == "" && time.Now().After(ts.ExpiresAt) {
		if deleteErr := s.Delete(ctx, handle); deleteErr != nil {
			return ports.TokenSet{}, fmt.Errorf("cleanup expired token set: %w", deleteErr)
		}
		return ports.TokenSet{}, ErrNotFound
	}

	return ts, nil
}

func (s *TokenStore) Delete(ctx context.Context, handle string) error {
	if handle == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+handle).Err()
}

// ErrNotFound is returned when no token material exists for a handle.
type notFoundError struct{}

func (notFoundError) Error() string { return "token set not found" }

var ErrNotFound error = notFoundError{}

var _ ports.TokenStore = (*TokenStore)(nil)

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OnTrak-Tech/TaskBuddy/config"
	"github.com/OnTrak-Tech/TaskBuddy/internal/adapters/authroles"
	"github.com/OnTrak-Tech/TaskBuddy/internal/adapters/cognito"
	"github.com/OnTrak-Tech/TaskBuddy/internal/adapters/devauth"
	"github.com/OnTrak-Tech/TaskBuddy/internal/adapters/oidc"
	redisadapter "github.com/OnTrak-Tech/TaskBuddy/internal/adapters/redis"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// ConnectRedis opens and verifies the Redis connection backing the token
// store.
//
//nolint:ireturn // returning redis.UniversalClient keeps cluster support open.
func ConnectRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.URI,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", cfg.URI, "db", cfg.DB)
	}

	return client, nil
}

// AuthDeps contains the dependencies for building the auth store registry.
type AuthDeps struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	TokenTTL    time.Duration
	Logger      *slog.Logger
}

// BuildStoreRegistry wires the identity provider selected by AUTH_MODE into
// a session-handle store registry. The provider is returned alongside the
// registry so the API client can fetch per-call credentials from the same
// source. Unlike optional subsystems, a broken auth configuration is fatal:
// every page in the application sits behind it.
func BuildStoreRegistry(ctx context.Context, deps AuthDeps) (*service.StoreRegistry, ports.IdentityProvider, error) {
	if deps.RedisClient == nil {
		return nil, nil, errors.New("redis client is required for the token store")
	}

	tokens := redisadapter.NewTokenStore(deps.RedisClient, deps.TokenTTL)

	provider, err := buildIdentityProvider(ctx, deps, tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("build identity provider (mode %q): %w", deps.Auth.Mode, err)
	}

	registry, err := service.NewStoreRegistry(service.AuthStoreOptions{
		Provider: provider,
		Roles:    authroles.StaticRoleMapper{AdminGroup: deps.Auth.AdminGroup},
	})
	if err != nil {
		return nil, nil, err
	}
	return registry, provider, nil
}

//nolint:ireturn // the provider is selected at runtime by AUTH_MODE.
func buildIdentityProvider(
	ctx context.Context,
	deps AuthDeps,
	tokens ports.TokenStore,
) (ports.IdentityProvider, error) {
	switch deps.Auth.Mode {
	case config.AuthModeCognito:
		return cognito.NewProvider(ctx, cognito.ProviderConfig{
			UserPoolID: deps.Auth.Cognito.UserPoolID,
			ClientID:   deps.Auth.Cognito.ClientID,
			Region:     deps.Auth.Cognito.Region,
			Tokens:     tokens,
			Logger:     deps.Logger,
		})

	case config.AuthModeOIDC:
		return oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     deps.Auth.OIDC.ClientID,
			ClientSecret: deps.Auth.OIDC.ClientSecret,
			Scope:        deps.Auth.OIDC.Scope,
			DiscoveryURL: deps.Auth.OIDC.DiscoveryURL,
			Tokens:       tokens,
		})

	case config.AuthModeMock:
		if deps.Logger != nil {
			deps.Logger.Warn("mock auth enabled; do not use in production",
				"username", deps.Auth.DevAuth.Username)
		}
		return devauth.NewProvider(devauth.Config{
			Username: deps.Auth.DevAuth.Username,
			Email:    deps.Auth.DevAuth.Email,
			Password: deps.Auth.DevAuth.Password,
			Groups:   deps.Auth.DevAuth.Groups,
		})

	default:
		return nil, fmt.Errorf("unknown auth mode %q", deps.Auth.Mode)
	}
}

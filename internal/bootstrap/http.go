package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/OnTrak-Tech/TaskBuddy/config"
	"github.com/OnTrak-Tech/TaskBuddy/internal/apiclient"
	httpx "github.com/OnTrak-Tech/TaskBuddy/internal/http"
	"github.com/OnTrak-Tech/TaskBuddy/internal/ports"
	"github.com/OnTrak-Tech/TaskBuddy/internal/service"
)

// BuildAPIClient constructs the credentialed client for the downstream
// TaskBuddy API. Credentials are fetched per call from the identity
// provider, so the client itself holds no identity state.
func BuildAPIClient(cfg config.APIConfig, provider ports.IdentityProvider) (*apiclient.Client, error) {
	if cfg.BaseEndpoint == "" {
		return nil, fmt.Errorf("API base endpoint is required")
	}
	return apiclient.NewClient(apiclient.ClientOptions{
		BaseEndpoint: cfg.BaseEndpoint,
		Provider:     provider,
		Notifier:     httpx.CtxNotifier{},
		HTTPClient:   &http.Client{Timeout: cfg.Timeout},
	})
}

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Registry *service.StoreRegistry
	API      *apiclient.Client
	Logger   *slog.Logger
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   logger,
		Registry: cfg.Registry,
		API:      cfg.API,
		HTTP:     appCfg.HTTP,
		IsDev:    appCfg.IsDev,
	})

	return startServer(logger, handler, appCfg.HTTP.Addr)
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Registry *service.StoreRegistry
	API      *apiclient.Client
	HTTP     config.HTTPConfig
	IsDev    bool
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Registry:     cfg.Registry,
		API:          cfg.API,
		CookieDomain: cfg.HTTP.CookieDomain,
		Logger:       cfg.Logger,
	})

	// Order: Recover -> Logging -> Notify -> Session -> Router
	secureCookies := !cfg.IsDev && strings.HasPrefix(cfg.HTTP.BaseURL, "https://")

	h := router
	h = httpx.Session(cfg.Registry, cfg.HTTP.CookieDomain, secureCookies)(h)
	h = httpx.Notify()(h)
	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}

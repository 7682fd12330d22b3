package config

import (
	"strings"
	"time"
)

// APIConfig locates the downstream TaskBuddy backend API.
type APIConfig struct {
	// BaseEndpoint is the backend root, e.g. "https://api.taskbuddy.example.com".
	BaseEndpoint string `env:"BASE_ENDPOINT"`

	// Timeout bounds a single backend call when the caller supplies no
	// tighter deadline.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseEndpoint = strings.TrimRight(a.BaseEndpoint, "/")
	if a.Timeout <= 0 {
		a.Timeout = 30 * time.Second
	}
}

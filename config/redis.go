package config

import "time"

// RedisConfig contains Redis configuration for the token store.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// TokenTTL bounds how long a browser session handle stays resolvable.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
}

// config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Port string `env:"PORT,default=8000"`

	// StoreBackend is "mongo" or "memory".
	StoreBackend  string `env:"STORE_BACKEND,default=mongo"`
	MongoURI      string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE,default=asset_performance_dashboard"`

	// EnforceUniqueIndex creates unique asset_id indexes at startup so the
	// create-time uniqueness check cannot be raced.
	EnforceUniqueIndex bool `env:"ENFORCE_UNIQUE_INDEX,default=false"`

	AuthUsername string `env:"AUTH_USERNAME,default=admin"`
	AuthPassword string `env:"AUTH_PASSWORD,default=password"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN"`

	SeedFile string `env:"SEED_FILE"`
}

// Load reads configuration from the environment. Call godotenv.Load first
// if a .env file should be honoured.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	switch cfg.StoreBackend {
	case "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.AuthUsername == "" || cfg.AuthPassword == "" {
		return nil, errors.New("AUTH_USERNAME and AUTH_PASSWORD must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the flat environment shape read by cleanenv.
//
// Environment variable mapping:
//
//	PORT         - Server port (default: "8080")
//	ENVIRONMENT  - Runtime environment (default: "development")
//	DATABASE_URL - Connection string. "postgresql://..." or "postgres://..."
//	               selects the postgres repository; empty or "memory" selects
//	               the in-memory repository.
//	DB_SCHEMA    - Postgres schema (default: "publishing")
type envConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBSchema    string `env:"DB_SCHEMA"`
}

// WithEnv applies environment variable overrides on top of the current
// configuration.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.DBSchema != "" {
			c.DBSchema = env.DBSchema
		}

		return applyDatabaseURL(c, env.DatabaseURL)
	}
}

// applyDatabaseURL auto-detects the database type from the URL scheme.
func applyDatabaseURL(c *ServerConfig, dbURL string) error {
	switch {
	case dbURL == "" || dbURL == "memory":
		return nil
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
	}
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// SequenceBackend selects where identifier counters live.
type SequenceBackend string

const (
	SequencePostgres SequenceBackend = "postgres"
	SequenceRedis    SequenceBackend = "redis"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Daycare"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Port         int    `envconfig:"DB_PORT" default:"5432"`
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:""`
		Name         string `envconfig:"DB_NAME" default:"daycare"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		Migrate      bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" required:"true"`
		Issuer   string        `envconfig:"JWT_ISSUER" default:"daycare"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"12h"`
	}

	Sequence struct {
		Backend SequenceBackend `envconfig:"SEQUENCE_BACKEND" default:"postgres"`
	}

	Redis struct {
		Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password    string        `envconfig:"REDIS_PASSWORD" default:""`
		DB          int           `envconfig:"REDIS_DB" default:"0"`
		LockTimeout time.Duration `envconfig:"REDIS_LOCK_TIMEOUT" default:"5s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	TUI struct {
		UserEmail string `envconfig:"TUI_USER_EMAIL"`
		ExportDir string `envconfig:"TUI_EXPORT_DIR" default:"exports"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Sequence.Backend {
	case SequencePostgres, SequenceRedis:
	default:
		return fmt.Errorf("unknown sequence backend %q", c.Sequence.Backend)
	}

	if len(strings.TrimSpace(c.Auth.Secret)) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	return nil
}

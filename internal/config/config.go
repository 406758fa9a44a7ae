package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"libraryms"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"libraryms"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Session struct {
		Secret string        `envconfig:"SESSION_SECRET" required:"true"`
		TTL    time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	}

	ISBN struct {
		BaseURL string `envconfig:"ISBN_BASE_URL" default:"https://api.jike.xyz"`
		APIKey  string `envconfig:"ISBN_API_KEY"`
	}

	Auth struct {
		// Static directory entries, "uid:password:Display Name". Stands
		// in for LDAP where none is configured.
		Users []string `envconfig:"AUTH_USERS"`
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

	return &cfg, nil
}

// Package config loads connection configuration from an optional config.yaml
// with environment variable overrides. The allow-list itself is not
// configuration; it is constructed in code by the application owner.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigFile is the YAML file read when present. Environment variables
// always override YAML values; the password must come from the environment.
const ConfigFile = "config.yaml"

// Config holds all configuration for pgsafe.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER"`
	Password       string `yaml:"-" env:"DB_PASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"DB_NAME" env-default:"postgres"`
	Schema         string `yaml:"schema" env:"DB_SCHEMA" env-default:"public"`
	SSLMode        string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"DB_MAX_CONNECTIONS" env-default:"10"`
	MinConnections int32  `yaml:"min_connections" env:"DB_MIN_CONNECTIONS" env-default:"1"`
}

// Load reads configuration from config.yaml if it exists, otherwise from the
// environment alone.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(ConfigFile); err == nil {
		if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Database.User == "" {
		return nil, fmt.Errorf("database user is required (DB_USER)")
	}

	return cfg, nil
}

// URL returns a postgres:// connection URL for pool construction. The schema
// is applied via search_path so unqualified names resolve predictably.
func (c *DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		q.Set("options", "-csearch_path="+c.Schema)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// ConnectionString returns a keyword/value PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

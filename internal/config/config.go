// Package config loads server configuration from an optional YAML file
// layered over environment-variable defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from YAML strings like "90m"
// or "1h30m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all runtime settings for the conference server.
type Config struct {
	Addr          string   `yaml:"addr"`
	JWTSecret     string   `yaml:"jwt_secret"`
	TokenDuration Duration `yaml:"token_duration"`
	RedisAddr     string   `yaml:"redis_addr"`
	RedisPassword string   `yaml:"redis_password"`
	RedisDB       int      `yaml:"redis_db"`
	Database      Database `yaml:"database"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds a libpq-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads config from path (optional, pass "" to skip) on top of
// environment-variable defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("CONF_ADDR", ":8080"),
		JWTSecret:     getEnv("CONF_JWT_SECRET", "dev-only-secret"),
		TokenDuration: Duration(time.Hour),
		RedisAddr:     getEnv("CONF_REDIS_ADDR", ""),
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "conferencecentral"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package db

import (
	"fmt"
	"os"
	"strconv"
)

type PostgresConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoadPostgresConfig reads DATABASE_URL, or the DB_* variables when it is unset.
func LoadPostgresConfig() (PostgresConfig, error) {
	cfg := PostgresConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnv("DB_HOST", "localhost"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Port:     5432,
	}

	if p := os.Getenv("DB_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return cfg, fmt.Errorf("invalid DB_PORT %q: %w", p, err)
		}
		cfg.Port = port
	}

	if cfg.URL == "" && (cfg.User == "" || cfg.DBName == "") {
		return cfg, fmt.Errorf("DATABASE_URL or DB_USER and DB_NAME must be set")
	}
	return cfg, nil
}

func (c PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

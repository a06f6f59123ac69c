package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Cheertaboi/coupon-management-service/pkg/db"
)

type Config struct {
	Port           int
	RequestTimeout time.Duration
	AllowedOrigins []string

	Postgres db.PostgresConfig

	JWTSecret string
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RedeemAttempts        int
	ImportMaxBytes        int64
	ImportDefaultValidity time.Duration

	Archive ArchiveConfig
}

// ArchiveConfig points at an S3-compatible bucket for uploaded import files.
// An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	pg, err := db.LoadPostgresConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Postgres:      pg,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("IMPORT_ARCHIVE_BUCKET"),
			Endpoint:        os.Getenv("IMPORT_ARCHIVE_ENDPOINT"),
			Region:          getEnvOrDefault("IMPORT_ARCHIVE_REGION", "auto"),
			AccessKeyID:     os.Getenv("IMPORT_ARCHIVE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("IMPORT_ARCHIVE_SECRET_ACCESS_KEY"),
			Prefix:          getEnvOrDefault("IMPORT_ARCHIVE_PREFIX", "coupon-imports"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RedeemAttempts, err = intEnv("REDEEM_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	maxBytes, err := intEnv("IMPORT_MAX_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.ImportMaxBytes = int64(maxBytes)

	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ImportDefaultValidity, err = durationEnv("IMPORT_DEFAULT_VALIDITY", 365*24*time.Hour); err != nil {
		return nil, err
	}

	origins := getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// Package config loads the server's runtime settings from the environment,
// with an optional .env file layered underneath.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Asset store backends.
const (
	AssetStoreDisk = "disk"
	AssetStoreDB   = "db"
	AssetStoreS3   = "s3"
)

const minSecretLength = 32

// Config holds runtime settings for the storefront server.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	IDAllocation  string
	AssetStore    string
	UploadDir     string
	PublicBaseURL string
	CORSOrigins   []string
	AuthRate      float64
	AuthBurst     int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// UsesPostgres reports whether DatabaseURL points at a Postgres server
// rather than a SQLite file.
func (c *Config) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") ||
		strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Load reads envFile if it exists, then builds a Config from the
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         envOrDefault("PORT", "4000"),
		DatabaseURL:  envOrDefault("DATABASE_URL", "storefront.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		IDAllocation: envOrDefault("ID_ALLOCATION", "sequence"),
		AssetStore:   envOrDefault("ASSET_STORE", AssetStoreDisk),
		UploadDir:    envOrDefault("UPLOAD_DIR", "upload/images"),
		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     envOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
	}
	cfg.PublicBaseURL = strings.TrimRight(envOrDefault("PUBLIC_BASE_URL", "http://localhost:"+cfg.Port), "/")

	for _, origin := range strings.Split(envOrDefault("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minSecretLength)
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(envOrDefault("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}

	if cfg.BcryptCost, err = strconv.Atoi(envOrDefault("BCRYPT_COST", "12")); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}

	if cfg.AuthRate, err = strconv.ParseFloat(envOrDefault("AUTH_RATE_PER_SEC", "1"), 64); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_PER_SEC: %w", err)
	}
	if cfg.AuthBurst, err = strconv.Atoi(envOrDefault("AUTH_RATE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST: %w", err)
	}
	if cfg.AuthRate <= 0 || cfg.AuthBurst <= 0 {
		return nil, errors.New("AUTH_RATE_PER_SEC and AUTH_RATE_BURST must be positive")
	}

	switch cfg.IDAllocation {
	case "sequence", "snapshot":
	default:
		return nil, fmt.Errorf("ID_ALLOCATION must be sequence or snapshot, got %q", cfg.IDAllocation)
	}

	switch cfg.AssetStore {
	case AssetStoreDisk, AssetStoreDB:
	case AssetStoreS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required when ASSET_STORE=s3")
		}
	default:
		return nil, fmt.Errorf("ASSET_STORE must be disk, db or s3, got %q", cfg.AssetStore)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

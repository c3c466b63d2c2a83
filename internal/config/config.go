package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName    string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	HTTPListenAddr string
	LogLevel       string
	CORSOrigins    []string
	// NATSURL enables domain event publishing when set.
	NATSURL string
	// CatalogCacheBytes bounds the in-process plan/module cache.
	CatalogCacheBytes  int64
	SuperAdminEmail    string
	SuperAdminPassword string
	DevMode            bool
}

func Load() (*Config, error) {
	origins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	var corsList []string
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			corsList = append(corsList, trimmed)
		}
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_TTL: %w", err)
	}

	cacheBytes, err := strconv.ParseInt(getEnv("CATALOG_CACHE_BYTES", "1048576"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse CATALOG_CACHE_BYTES: %w", err)
	}

	cfg := &Config{
		ServiceName:        getEnv("SERVICE_NAME", "buildcrm-api"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "buildcrm-api"),
		JWTTTL:             ttl,
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        corsList,
		NATSURL:            getEnv("NATS_URL", ""),
		CatalogCacheBytes:  cacheBytes,
		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", "admin@buildcrm.com"),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", "admin123"),
		DevMode:            getEnv("DEV_MODE", "") == "true",
	}

	return cfg, nil
}

// Validate checks the settings required to serve the API.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

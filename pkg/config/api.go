package config

import (
	"errors"
	"fmt"
	"time"
)

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	MinPasswordLength  int
	InvitationTTL      time.Duration
	HealthProbeTimeout time.Duration
	HealthDependencies []string
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://devtrack:devtrack@db:5432/devtrack?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "./db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTokenTTL:    time.Duration(GetInt("REFRESH_TOKEN_TTL_HOURS", 24)) * time.Hour,
		MinPasswordLength:  GetInt("MIN_PASSWORD_LENGTH", 8),
		InvitationTTL:      time.Duration(GetInt("INVITATION_TTL_HOURS", 720)) * time.Hour,
		HealthProbeTimeout: time.Duration(GetInt("HEALTH_PROBE_TIMEOUT_SECONDS", 2)) * time.Second,
		HealthDependencies: GetStringSlice("HEALTH_DEPENDENCY_URLS"),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}

// Validate rejects configurations the server cannot safely start with.
func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("config: listen address required")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: database url required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: jwt secret required")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("config: token ttls must be positive (access=%s refresh=%s)", c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	if c.MinPasswordLength < 1 {
		return errors.New("config: minimum password length must be positive")
	}
	if c.InvitationTTL <= 0 {
		return errors.New("config: invitation ttl must be positive")
	}
	if c.HealthProbeTimeout <= 0 {
		return errors.New("config: health probe timeout must be positive")
	}
	return nil
}

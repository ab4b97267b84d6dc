package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config aggregates all runtime configuration for the attainment API.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Attainment AttainmentConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AttainmentConfig governs the attainment calculation engine: the blend
// between direct (marks-based) and indirect (survey-based) PO attainment,
// the PO target on the 0-3 scale, compliance requirements and caching.
type AttainmentConfig struct {
	DirectWeight       float64
	IndirectWeight     float64
	POTargetLevel      float64
	ComplianceMinRatio float64
	CacheTTL           time.Duration
	CacheEnabled       bool
}

const weightSumTolerance = 1e-9

// Validate rejects degenerate attainment configuration before any
// calculation can consume it.
func (c AttainmentConfig) Validate() error {
	if c.DirectWeight < 0 || c.IndirectWeight < 0 {
		return errors.New("attainment weights must be non-negative")
	}
	if math.Abs(c.DirectWeight+c.IndirectWeight-1.0) > weightSumTolerance {
		return fmt.Errorf("attainment weights must sum to 1.0, got %.4f", c.DirectWeight+c.IndirectWeight)
	}
	if c.POTargetLevel < 0 || c.POTargetLevel > 3 {
		return fmt.Errorf("po target level must be within [0,3], got %.2f", c.POTargetLevel)
	}
	if c.ComplianceMinRatio < 0 || c.ComplianceMinRatio > 1 {
		return fmt.Errorf("compliance minimum ratio must be within [0,1], got %.2f", c.ComplianceMinRatio)
	}
	return nil
}

// Load reads configuration from the environment (optionally seeded from a
// .env file) and validates the sections the engine depends on.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "obe_portal")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ATTAINMENT_DIRECT_WEIGHT", 0.8)
	v.SetDefault("ATTAINMENT_INDIRECT_WEIGHT", 0.2)
	v.SetDefault("ATTAINMENT_PO_TARGET_LEVEL", 2.0)
	v.SetDefault("ATTAINMENT_COMPLIANCE_MIN_RATIO", 1.0)
	v.SetDefault("ATTAINMENT_CACHE_TTL", "10m")
	v.SetDefault("ATTAINMENT_CACHE_ENABLED", true)

	cfg := &Config{
		Env:       strings.ToLower(v.GetString("ENV")),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Attainment: AttainmentConfig{
			DirectWeight:       v.GetFloat64("ATTAINMENT_DIRECT_WEIGHT"),
			IndirectWeight:     v.GetFloat64("ATTAINMENT_INDIRECT_WEIGHT"),
			POTargetLevel:      v.GetFloat64("ATTAINMENT_PO_TARGET_LEVEL"),
			ComplianceMinRatio: v.GetFloat64("ATTAINMENT_COMPLIANCE_MIN_RATIO"),
			CacheTTL:           v.GetDuration("ATTAINMENT_CACHE_TTL"),
			CacheEnabled:       v.GetBool("ATTAINMENT_CACHE_ENABLED"),
		},
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("unknown environment %q", cfg.Env)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if err := cfg.Attainment.Validate(); err != nil {
		return nil, fmt.Errorf("attainment config: %w", err)
	}

	return cfg, nil
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

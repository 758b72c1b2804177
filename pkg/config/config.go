package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full runtime configuration, loaded once at startup from the
// environment with an optional .env overlay.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
	Recompute RecomputeConfig
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

// DashboardConfig governs dashboard caching behaviour.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
	AtRiskLimit  int
}

// ExportsConfig toggles CSV/PDF export endpoints.
type ExportsConfig struct {
	Enabled bool
}

// RecomputeConfig tunes the bulk CGPA recompute worker.
type RecomputeConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

var defaults = map[string]any{
	"ENV":        EnvDevelopment,
	"PORT":       8080,
	"API_PREFIX": "/api",

	"DB_HOST":           "localhost",
	"DB_PORT":           5432,
	"DB_USER":           "postgres",
	"DB_PASSWORD":       "postgres",
	"DB_NAME":           "student_records",
	"DB_SSL_MODE":       "disable",
	"DB_MAX_OPEN_CONNS": 10,
	"DB_MAX_IDLE_CONNS": 5,

	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"ALLOWED_ORIGINS": "",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",

	"DASHBOARD_CACHE_ENABLED": false,
	"DASHBOARD_CACHE_TTL":     "5m",
	"DASHBOARD_AT_RISK_LIMIT": 10,

	"ENABLE_EXPORTS": true,

	"RECOMPUTE_WORKERS":     2,
	"RECOMPUTE_MAX_RETRIES": 3,
	"RECOMPUTE_RETRY_DELAY": "1s",
}

// Load reads configuration from the environment, falling back to a .env file
// when one is present. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{AllowedOrigins: commaList(v.GetString("ALLOWED_ORIGINS"))},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Dashboard: DashboardConfig{
			CacheEnabled: v.GetBool("DASHBOARD_CACHE_ENABLED"),
			CacheTTL:     durationOr(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
			AtRiskLimit:  v.GetInt("DASHBOARD_AT_RISK_LIMIT"),
		},
		Exports: ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")},
		Recompute: RecomputeConfig{
			Workers:    v.GetInt("RECOMPUTE_WORKERS"),
			MaxRetries: v.GetInt("RECOMPUTE_MAX_RETRIES"),
			RetryDelay: durationOr(v.GetString("RECOMPUTE_RETRY_DELAY"), time.Second),
		},
	}, nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || raw == "" {
		return fallback
	}
	return d
}

func commaList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

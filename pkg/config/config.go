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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Plan     PlanConfig
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

// PlanConfig governs schedule acquisition, caching and layout geometry.
type PlanConfig struct {
	// ScheduleURL is the student schedule endpoint of the remote planner.
	ScheduleURL string
	// SearchURL is the suggestion endpoint of the remote planner.
	SearchURL string
	UserAgent string
	// Album is the default album number used when a request carries none.
	Album string
	// Timezone anchors day boundaries; the planner publishes local timestamps.
	Timezone string

	HTTPTimeout time.Duration
	// ScopeTTL bounds the freshness of a (view, range-start) scope.
	ScopeTTL time.Duration
	// FilterTTL bounds the freshness of subject filter scopes.
	FilterTTL time.Duration

	// StartHour/EndHour bound the visible day window; HourHeightPx scales it.
	StartHour    int
	EndHour      int
	HourHeightPx float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Plan = PlanConfig{
		ScheduleURL:  v.GetString("PLAN_SCHEDULE_URL"),
		SearchURL:    v.GetString("PLAN_SEARCH_URL"),
		UserAgent:    v.GetString("PLAN_USER_AGENT"),
		Album:        v.GetString("PLAN_ALBUM"),
		Timezone:     v.GetString("PLAN_TIMEZONE"),
		HTTPTimeout:  parseDuration(v.GetString("PLAN_HTTP_TIMEOUT"), 15*time.Second),
		ScopeTTL:     parseDuration(v.GetString("PLAN_SCOPE_TTL"), 20*time.Minute),
		FilterTTL:    parseDuration(v.GetString("PLAN_FILTER_TTL"), 12*time.Hour),
		StartHour:    v.GetInt("PLAN_START_HOUR"),
		EndHour:      v.GetInt("PLAN_END_HOUR"),
		HourHeightPx: v.GetFloat64("PLAN_HOUR_HEIGHT_PX"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "plan_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLAN_SCHEDULE_URL", "https://plan.zut.edu.pl/schedule_student.php")
	v.SetDefault("PLAN_SEARCH_URL", "https://plan.zut.edu.pl/schedule.php")
	v.SetDefault("PLAN_USER_AGENT", "zut-plan-api/1.0")
	v.SetDefault("PLAN_ALBUM", "")
	v.SetDefault("PLAN_TIMEZONE", "Europe/Warsaw")
	v.SetDefault("PLAN_HTTP_TIMEOUT", "15s")
	v.SetDefault("PLAN_SCOPE_TTL", "20m")
	v.SetDefault("PLAN_FILTER_TTL", "12h")
	v.SetDefault("PLAN_START_HOUR", 6)
	v.SetDefault("PLAN_END_HOUR", 22)
	v.SetDefault("PLAN_HOUR_HEIGHT_PX", 48)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
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

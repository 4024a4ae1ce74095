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

	Upstream      UpstreamConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Trial         TrialConfig
	Notifications NotificationsConfig
}

// UpstreamConfig points at the trial data API the dashboard consumes.
type UpstreamConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
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

// TrialConfig carries the study protocol constants used by the status engine.
type TrialConfig struct {
	DurationDays         int
	FallbackLookbackDays int
	RollingWindowHours   int
	RecentEventsDays     int
	StaleDeviceHours     float64
}

// NotificationsConfig gates the push notification endpoints.
type NotificationsConfig struct {
	Enabled bool
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

	cfg.Upstream = UpstreamConfig{
		BaseURL:    v.GetString("UPSTREAM_BASE_URL"),
		Timeout:    parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 15*time.Second),
		RetryCount: v.GetInt("UPSTREAM_RETRY_COUNT"),
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

	cfg.Trial = TrialConfig{
		DurationDays:         v.GetInt("TRIAL_DURATION_DAYS"),
		FallbackLookbackDays: v.GetInt("TRIAL_FALLBACK_LOOKBACK_DAYS"),
		RollingWindowHours:   v.GetInt("TRIAL_ROLLING_WINDOW_HOURS"),
		RecentEventsDays:     v.GetInt("TRIAL_RECENT_EVENTS_DAYS"),
		StaleDeviceHours:     v.GetFloat64("TRIAL_STALE_DEVICE_HOURS"),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled: v.GetBool("ENABLE_NOTIFICATIONS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3000")
	v.SetDefault("UPSTREAM_TIMEOUT", "15s")
	v.SetDefault("UPSTREAM_RETRY_COUNT", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TRIAL_DURATION_DAYS", 30)
	v.SetDefault("TRIAL_FALLBACK_LOOKBACK_DAYS", 30)
	v.SetDefault("TRIAL_ROLLING_WINDOW_HOURS", 36)
	v.SetDefault("TRIAL_RECENT_EVENTS_DAYS", 7)
	v.SetDefault("TRIAL_STALE_DEVICE_HOURS", 10)

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
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

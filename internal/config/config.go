package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SpreadsheetID   string
	CredentialsPath string
	ApplicationName string
	URLPrefix       string
	Port            string
	LogLevel        string

	// Member records
	DatabaseURL    string
	DBQueryTimeout time.Duration

	// Google sign-in
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string

	// Conversions forwarding
	PixelGraphURL          string
	PixelAPIVersion        string
	PixelRetryMax          int
	PixelRetryBackoff      time.Duration
	PixelTimeout           time.Duration
	PixelBreakerMaxFailure int
	PixelBreakerReset      time.Duration
}

func Load() Config {
	return Config{
		SpreadsheetID:          getEnvRequired("SPREADSHEET_ID"),
		CredentialsPath:        getEnvRequired("GOOGLE_CREDENTIALS_PATH"),
		ApplicationName:        getEnv("APPLICATION_NAME", "sheetdesk"),
		URLPrefix:              os.Getenv("URL_PREFIX"),
		Port:                   getEnv("PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DBQueryTimeout:         getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		OAuthClientID:          os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:      os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthRedirectURL:       os.Getenv("OAUTH_REDIRECT_URL"),
		PixelGraphURL:          getEnv("PIXEL_GRAPH_URL", "https://graph.facebook.com"),
		PixelAPIVersion:        getEnv("PIXEL_API_VERSION", "v21.0"),
		PixelRetryMax:          getEnvInt("PIXEL_RETRY_MAX", 2),
		PixelRetryBackoff:      getEnvDuration("PIXEL_RETRY_BACKOFF", 200*time.Millisecond),
		PixelTimeout:           getEnvDuration("PIXEL_TIMEOUT", 10*time.Second),
		PixelBreakerMaxFailure: getEnvInt("PIXEL_BREAKER_MAX_FAILURES", 5),
		PixelBreakerReset:      getEnvDuration("PIXEL_BREAKER_RESET", 30*time.Second),
	}
}

// OAuthEnabled reports whether Google sign-in is configured.
func (c Config) OAuthEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != "" && c.OAuthRedirectURL != ""
}

// ParseLogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic("required environment variable " + key + " is not set")
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return d
	}
	return fallback
}

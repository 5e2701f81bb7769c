package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

var optionalKeys = []string{
	"APPLICATION_NAME", "URL_PREFIX", "PORT", "LOG_LEVEL",
	"DATABASE_URL", "DB_QUERY_TIMEOUT",
	"OAUTH_CLIENT_ID", "OAUTH_CLIENT_SECRET", "OAUTH_REDIRECT_URL",
	"PIXEL_GRAPH_URL", "PIXEL_API_VERSION", "PIXEL_RETRY_MAX", "PIXEL_RETRY_BACKOFF",
	"PIXEL_TIMEOUT", "PIXEL_BREAKER_MAX_FAILURES", "PIXEL_BREAKER_RESET",
}

func TestLoad_Defaults(t *testing.T) {
	// Set required env vars
	os.Setenv("SPREADSHEET_ID", "doc-1")
	os.Setenv("GOOGLE_CREDENTIALS_PATH", "/etc/sheetdesk/credentials.json")
	defer os.Unsetenv("SPREADSHEET_ID")
	defer os.Unsetenv("GOOGLE_CREDENTIALS_PATH")

	// Clear optional env vars to test defaults
	for _, key := range optionalKeys {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.SpreadsheetID != "doc-1" {
		t.Errorf("SpreadsheetID: got %q, want %q", cfg.SpreadsheetID, "doc-1")
	}
	if cfg.CredentialsPath != "/etc/sheetdesk/credentials.json" {
		t.Errorf("CredentialsPath: got %q", cfg.CredentialsPath)
	}
	if cfg.ApplicationName != "sheetdesk" {
		t.Errorf("ApplicationName: got %q, want %q", cfg.ApplicationName, "sheetdesk")
	}
	if cfg.URLPrefix != "" {
		t.Errorf("URLPrefix: got %q, want empty", cfg.URLPrefix)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL: got %q, want empty", cfg.DatabaseURL)
	}
	if cfg.DBQueryTimeout != 5*time.Second {
		t.Errorf("DBQueryTimeout: got %v, want %v", cfg.DBQueryTimeout, 5*time.Second)
	}
	if cfg.OAuthEnabled() {
		t.Error("OAuthEnabled: got true without client credentials")
	}
	if cfg.PixelGraphURL != "https://graph.facebook.com" || cfg.PixelAPIVersion != "v21.0" {
		t.Errorf("Pixel endpoint: got %q %q", cfg.PixelGraphURL, cfg.PixelAPIVersion)
	}
	if cfg.PixelRetryMax != 2 {
		t.Errorf("PixelRetryMax: got %d, want %d", cfg.PixelRetryMax, 2)
	}
	if cfg.PixelRetryBackoff != 200*time.Millisecond {
		t.Errorf("PixelRetryBackoff: got %v", cfg.PixelRetryBackoff)
	}
	if cfg.PixelTimeout != 10*time.Second {
		t.Errorf("PixelTimeout: got %v", cfg.PixelTimeout)
	}
	if cfg.PixelBreakerMaxFailure != 5 || cfg.PixelBreakerReset != 30*time.Second {
		t.Errorf("Pixel breaker: got %d %v", cfg.PixelBreakerMaxFailure, cfg.PixelBreakerReset)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SPREADSHEET_ID", "doc-2")
	os.Setenv("GOOGLE_CREDENTIALS_PATH", "/custom/creds.json")
	os.Setenv("URL_PREFIX", "sw/")
	os.Setenv("PORT", "9090")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("DATABASE_URL", "postgres://localhost/sheetdesk")
	os.Setenv("OAUTH_CLIENT_ID", "client")
	os.Setenv("OAUTH_CLIENT_SECRET", "secret")
	os.Setenv("OAUTH_REDIRECT_URL", "http://localhost:9090/login/oauth2/code/google")
	os.Setenv("PIXEL_RETRY_MAX", "4")
	os.Setenv("PIXEL_TIMEOUT", "3s")
	defer func() {
		os.Unsetenv("SPREADSHEET_ID")
		os.Unsetenv("GOOGLE_CREDENTIALS_PATH")
		for _, key := range optionalKeys {
			os.Unsetenv(key)
		}
	}()

	cfg := Load()

	if cfg.SpreadsheetID != "doc-2" {
		t.Errorf("SpreadsheetID: got %q", cfg.SpreadsheetID)
	}
	if cfg.URLPrefix != "sw/" {
		t.Errorf("URLPrefix: got %q", cfg.URLPrefix)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port: got %q", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.LogLevel)
	}
	if cfg.DatabaseURL != "postgres://localhost/sheetdesk" {
		t.Errorf("DatabaseURL: got %q", cfg.DatabaseURL)
	}
	if !cfg.OAuthEnabled() {
		t.Error("OAuthEnabled: got false with client credentials set")
	}
	if cfg.PixelRetryMax != 4 {
		t.Errorf("PixelRetryMax: got %d", cfg.PixelRetryMax)
	}
	if cfg.PixelTimeout != 3*time.Second {
		t.Errorf("PixelTimeout: got %v", cfg.PixelTimeout)
	}
}

func TestLoad_MissingRequired_Panics(t *testing.T) {
	os.Unsetenv("SPREADSHEET_ID")
	os.Setenv("GOOGLE_CREDENTIALS_PATH", "/tmp/creds.json")
	defer os.Unsetenv("GOOGLE_CREDENTIALS_PATH")

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for missing SPREADSHEET_ID")
		}
	}()

	Load()
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestGetEnv_Fallback(t *testing.T) {
	os.Unsetenv("TEST_NONEXISTENT_KEY")
	got := getEnv("TEST_NONEXISTENT_KEY", "default_value")
	if got != "default_value" {
		t.Errorf("got %q, want %q", got, "default_value")
	}
}

func TestGetEnv_Override(t *testing.T) {
	os.Setenv("TEST_GET_ENV_KEY", "override")
	defer os.Unsetenv("TEST_GET_ENV_KEY")

	got := getEnv("TEST_GET_ENV_KEY", "default")
	if got != "override" {
		t.Errorf("got %q, want %q", got, "override")
	}
}

func TestGetEnvInt_Fallback(t *testing.T) {
	os.Unsetenv("TEST_INT_NONEXISTENT")
	got := getEnvInt("TEST_INT_NONEXISTENT", 42)
	if got != 42 {
		t.Errorf("got %d, want %d", got, 42)
	}
}

func TestGetEnvInt_Valid(t *testing.T) {
	os.Setenv("TEST_INT_KEY", "99")
	defer os.Unsetenv("TEST_INT_KEY")

	got := getEnvInt("TEST_INT_KEY", 0)
	if got != 99 {
		t.Errorf("got %d, want %d", got, 99)
	}
}

func TestGetEnvInt_Invalid_ReturnsFallback(t *testing.T) {
	os.Setenv("TEST_INT_INVALID", "not_a_number")
	defer os.Unsetenv("TEST_INT_INVALID")

	got := getEnvInt("TEST_INT_INVALID", 7)
	if got != 7 {
		t.Errorf("got %d, want fallback %d", got, 7)
	}
}

func TestGetEnvDuration_Fallback(t *testing.T) {
	os.Unsetenv("TEST_DUR_NONEXISTENT")
	got := getEnvDuration("TEST_DUR_NONEXISTENT", 5*time.Second)
	if got != 5*time.Second {
		t.Errorf("got %v, want %v", got, 5*time.Second)
	}
}

func TestGetEnvDuration_Valid(t *testing.T) {
	os.Setenv("TEST_DUR_KEY", "2s")
	defer os.Unsetenv("TEST_DUR_KEY")

	got := getEnvDuration("TEST_DUR_KEY", 0)
	if got != 2*time.Second {
		t.Errorf("got %v, want %v", got, 2*time.Second)
	}
}

func TestGetEnvDuration_Invalid_ReturnsFallback(t *testing.T) {
	os.Setenv("TEST_DUR_INVALID", "not_a_duration")
	defer os.Unsetenv("TEST_DUR_INVALID")

	got := getEnvDuration("TEST_DUR_INVALID", 10*time.Millisecond)
	if got != 10*time.Millisecond {
		t.Errorf("got %v, want fallback %v", got, 10*time.Millisecond)
	}
}

func TestGetEnvRequired_Set(t *testing.T) {
	os.Setenv("TEST_REQUIRED_KEY", "hello")
	defer os.Unsetenv("TEST_REQUIRED_KEY")

	got := getEnvRequired("TEST_REQUIRED_KEY")
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestGetEnvRequired_Empty_Panics(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_MISSING")

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for missing required env var")
		}
	}()

	getEnvRequired("TEST_REQUIRED_MISSING")
}

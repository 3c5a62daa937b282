package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvIdentifier, EnvPassword, EnvDBPath, EnvLocale} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestConfigParser_Defaults(t *testing.T) {
	clearEnv(t)

	result, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("expected no error for missing config file, got: %v", err)
	}

	cfg := result.Config

	if cfg.API.BaseURL != "http://localhost:1337/api" {
		t.Errorf("default base_url: want http://localhost:1337/api, got %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("default timeout_seconds: want 30, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Auth.Identifier != "user@example.com" {
		t.Errorf("default identifier: want user@example.com, got %s", cfg.Auth.Identifier)
	}
	if cfg.Auth.Password != "password" {
		t.Errorf("default password: want password, got %s", cfg.Auth.Password)
	}
	if cfg.Auth.TokenSlot != "token" {
		t.Errorf("default token_slot: want token, got %s", cfg.Auth.TokenSlot)
	}
	if cfg.Storage.DBPath != "~/.local/share/evman/credentials.db" {
		t.Errorf("default db_path: got %s", cfg.Storage.DBPath)
	}
	if cfg.Display.NotificationMS != 3000 {
		t.Errorf("default notification_ms: want 3000, got %d", cfg.Display.NotificationMS)
	}
	if cfg.Display.Locale != "en" {
		t.Errorf("default locale: want en, got %s", cfg.Display.Locale)
	}
	if cfg.Notifications.SystemNotify {
		t.Error("default system_notify: want false, got true")
	}

	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings for missing file, got %v", result.Warnings)
	}
}

func TestConfigParser_CustomAPI(t *testing.T) {
	tomlData := `
[api]
base_url = "https://events.example.org/api"
timeout_seconds = 5
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.API.BaseURL != "https://events.example.org/api" {
		t.Errorf("base_url: got %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Errorf("timeout_seconds: want 5, got %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Auth.Identifier != "user@example.com" {
		t.Errorf("default identifier should be preserved, got %s", cfg.Auth.Identifier)
	}
	if cfg.Display.NotificationMS != 3000 {
		t.Errorf("default notification_ms should be preserved: want 3000, got %d", cfg.Display.NotificationMS)
	}
}

func TestConfigParser_PartialConfig(t *testing.T) {
	tomlData := `
[auth]
identifier = "admin@example.com"

[display]
locale = "fr"

[notifications]
system_notify = true
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.Auth.Identifier != "admin@example.com" {
		t.Errorf("identifier: got %s", cfg.Auth.Identifier)
	}
	if cfg.Auth.Password != "password" {
		t.Errorf("password default should be preserved, got %s", cfg.Auth.Password)
	}
	if cfg.Display.Locale != "fr" {
		t.Errorf("locale: want fr, got %s", cfg.Display.Locale)
	}
	if !cfg.Notifications.SystemNotify {
		t.Error("system_notify: want true")
	}
}

func TestConfigParser_ZeroTimeoutAllowed(t *testing.T) {
	result, err := LoadFromString("[api]\ntimeout_seconds = 0\n")
	if err != nil {
		t.Fatalf("timeout 0 disables the timeout and should be accepted: %v", err)
	}
	if result.Config.API.TimeoutSeconds != 0 {
		t.Errorf("timeout_seconds: want 0, got %d", result.Config.API.TimeoutSeconds)
	}
}

func TestConfigParser_InvalidValue(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{
			name: "base_url without scheme",
			toml: `[api]
base_url = "localhost:1337/api"`,
		},
		{
			name: "base_url with ftp scheme",
			toml: `[api]
base_url = "ftp://example.com"`,
		},
		{
			name: "negative timeout",
			toml: `[api]
timeout_seconds = -1`,
		},
		{
			name: "empty token slot",
			toml: `[auth]
token_slot = ""`,
		},
		{
			name: "zero notification_ms",
			toml: `[display]
notification_ms = 0`,
		},
		{
			name: "empty locale",
			toml: `[display]
locale = " "`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromString(tt.toml)
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigParser_MalformedTOML(t *testing.T) {
	if _, err := LoadFromString("[api\nbase_url ="); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestConfigParser_UnknownKey(t *testing.T) {
	tomlData := `
[api]
timeout_seconds = 10

[mysterious_section]
foo = "bar"

[another_unknown]
baz = 42
`
	result, err := LoadFromString(tomlData)
	if err != nil {
		t.Fatalf("unknown keys should not cause errors, got: %v", err)
	}

	foundMysterious := false
	foundAnother := false
	for _, w := range result.Warnings {
		if w == `unknown config key: "mysterious_section"` {
			foundMysterious = true
		}
		if w == `unknown config key: "another_unknown"` {
			foundAnother = true
		}
	}
	if !foundMysterious {
		t.Error("expected warning for mysterious_section, not found")
	}
	if !foundAnother {
		t.Error("expected warning for another_unknown, not found")
	}

	if result.Config.API.TimeoutSeconds != 10 {
		t.Errorf("timeout_seconds should still be loaded: want 10, got %d", result.Config.API.TimeoutSeconds)
	}
}

func TestConfigParser_FileLoad(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	tomlContent := `
[api]
base_url = "http://10.0.0.5:1337/api"

[storage]
db_path = ""
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("writing test config file: %v", err)
	}

	result, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Config.API.BaseURL != "http://10.0.0.5:1337/api" {
		t.Errorf("base_url from file: got %s", result.Config.API.BaseURL)
	}
	if result.Config.Storage.DBPath != "" {
		t.Errorf("db_path from file: want empty, got %s", result.Config.Storage.DBPath)
	}
	if result.Config.API.TimeoutSeconds != 30 {
		t.Errorf("timeout default: want 30, got %d", result.Config.API.TimeoutSeconds)
	}
}

func TestConfigParser_EmptyString(t *testing.T) {
	result, err := LoadFromString("")
	if err != nil {
		t.Fatalf("unexpected error for empty config: %v", err)
	}
	if result.Config.API.BaseURL != "http://localhost:1337/api" {
		t.Errorf("base_url: got %s", result.Config.API.BaseURL)
	}
}

func TestConfigParser_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://api.example.net")
	t.Setenv(EnvIdentifier, "ops@example.net")
	t.Setenv(EnvPassword, "s3cret")
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLocale, "fr")

	result, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := result.Config
	if cfg.API.BaseURL != "https://api.example.net" {
		t.Errorf("base_url: got %s", cfg.API.BaseURL)
	}
	if cfg.Auth.Identifier != "ops@example.net" {
		t.Errorf("identifier: got %s", cfg.Auth.Identifier)
	}
	if cfg.Auth.Password != "s3cret" {
		t.Errorf("password: got %s", cfg.Auth.Password)
	}
	if cfg.Storage.DBPath != "" {
		t.Errorf("empty EVMAN_DB_PATH should select in-memory cache, got %s", cfg.Storage.DBPath)
	}
	if cfg.Display.Locale != "fr" {
		t.Errorf("locale: got %s", cfg.Display.Locale)
	}
}

func TestConfigParser_EnvOverrideValidated(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "not a url")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("invalid EVMAN_API_URL should fail validation")
	}
}

func TestApplyEnv_UnsetKeepsFileValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://from-file/api"

	applyEnv(&cfg, func(string) (string, bool) { return "", false })

	if cfg.API.BaseURL != "http://from-file/api" {
		t.Errorf("unset env should keep file value, got %s", cfg.API.BaseURL)
	}
	if cfg.Storage.DBPath != DefaultConfig().Storage.DBPath {
		t.Errorf("unset EVMAN_DB_PATH should keep db_path, got %s", cfg.Storage.DBPath)
	}
}

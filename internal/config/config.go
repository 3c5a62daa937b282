package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	API           APIConfig
	Auth          AuthConfig
	Storage       StorageConfig
	Display       DisplayConfig
	Notifications NotificationConfig
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type AuthConfig struct {
	Identifier string `toml:"identifier"`
	Password   string `toml:"password"`
	TokenSlot  string `toml:"token_slot"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type DisplayConfig struct {
	NotificationMS int    `toml:"notification_ms"`
	Locale         string `toml:"locale"`
}

type NotificationConfig struct {
	SystemNotify bool `toml:"system_notify"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

var knownTopLevel = map[string]bool{
	"api":           true,
	"auth":          true,
	"storage":       true,
	"display":       true,
	"notifications": true,
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "evman", "config.toml")
}

// Load reads the config file at path, or the default one when path is
// empty, then applies .env and EVMAN_* environment overrides.
func Load(path string) (*LoadResult, error) {
	loadDotEnv()
	if path == "" {
		path = DefaultConfigPath()
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path (a missing file means defaults)
// and applies EVMAN_* environment overrides before validating.
func LoadFrom(path string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := decodeInto(result, string(data)); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&result.Config, os.LookupEnv)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

// LoadFromString parses TOML data over the defaults. The environment is
// not consulted.
func LoadFromString(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	if data == "" {
		return result, nil
	}

	if err := decodeInto(result, data); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

func decodeInto(result *LoadResult, data string) error {
	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return err
	}

	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return err
	}

	mergeFromRaw(&result.Config, &tf, raw)
	return nil
}

type tomlFile struct {
	API           *APIConfig          `toml:"api"`
	Auth          *AuthConfig         `toml:"auth"`
	Storage       *StorageConfig      `toml:"storage"`
	Display       *DisplayConfig      `toml:"display"`
	Notifications *NotificationConfig `toml:"notifications"`
}

// mergeFromRaw copies only the keys present in the file so that omitted
// keys keep their defaults even when the zero value is meaningful.
func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.API != nil {
		if section, ok := rawSection(raw, "api"); ok {
			if _, exists := section["base_url"]; exists {
				cfg.API.BaseURL = tf.API.BaseURL
			}
			if _, exists := section["timeout_seconds"]; exists {
				cfg.API.TimeoutSeconds = tf.API.TimeoutSeconds
			}
		}
	}
	if tf.Auth != nil {
		if section, ok := rawSection(raw, "auth"); ok {
			if _, exists := section["identifier"]; exists {
				cfg.Auth.Identifier = tf.Auth.Identifier
			}
			if _, exists := section["password"]; exists {
				cfg.Auth.Password = tf.Auth.Password
			}
			if _, exists := section["token_slot"]; exists {
				cfg.Auth.TokenSlot = tf.Auth.TokenSlot
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["notification_ms"]; exists {
				cfg.Display.NotificationMS = tf.Display.NotificationMS
			}
			if _, exists := section["locale"]; exists {
				cfg.Display.Locale = tf.Display.Locale
			}
		}
	}
	if tf.Notifications != nil {
		if section, ok := rawSection(raw, "notifications"); ok {
			if _, exists := section["system_notify"]; exists {
				cfg.Notifications.SystemNotify = tf.Notifications.SystemNotify
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Sprintf("api base_url is invalid: %v", err))
	} else if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api base_url must be an http(s) URL with a host, got %q", cfg.API.BaseURL))
	}
	if cfg.API.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Sprintf("api timeout_seconds must not be negative, got %d", cfg.API.TimeoutSeconds))
	}

	if strings.TrimSpace(cfg.Auth.TokenSlot) == "" {
		errs = append(errs, "auth token_slot must not be empty")
	}

	if cfg.Display.NotificationMS < 1 {
		errs = append(errs, fmt.Sprintf("notification_ms must be positive, got %d", cfg.Display.NotificationMS))
	}
	if strings.TrimSpace(cfg.Display.Locale) == "" {
		errs = append(errs, "display locale must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}

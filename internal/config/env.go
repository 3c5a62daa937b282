package config

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL     = "EVMAN_API_URL"
	EnvIdentifier = "EVMAN_IDENTIFIER"
	EnvPassword   = "EVMAN_PASSWORD"
	EnvDBPath     = "EVMAN_DB_PATH"
	EnvLocale     = "EVMAN_LOCALE"
)

// loadDotEnv populates the process environment from ./.env. Variables that
// are already set win. The file is optional.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARNING: ignoring .env: %v", err)
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := lookup(EnvIdentifier); ok && v != "" {
		cfg.Auth.Identifier = v
	}
	if v, ok := lookup(EnvPassword); ok {
		cfg.Auth.Password = v
	}
	// An explicitly empty EVMAN_DB_PATH selects the in-memory cache.
	if v, ok := lookup(EnvDBPath); ok {
		cfg.Storage.DBPath = v
	}
	if v, ok := lookup(EnvLocale); ok && v != "" {
		cfg.Display.Locale = v
	}
}

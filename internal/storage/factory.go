package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nixlim/evman/internal/config"
	"github.com/nixlim/evman/internal/session"
)

// NewCache returns the credential cache described by cfg and whether it
// survives a restart. An empty db_path, or a database that cannot be
// opened, yields an in-memory cache.
func NewCache(cfg config.StorageConfig) (session.Cache, bool, error) {
	if cfg.DBPath == "" {
		return session.NewMemoryCache(), false, nil
	}

	dbPath := expandTilde(cfg.DBPath)

	cache, err := NewSQLiteCache(dbPath)
	if err != nil {
		log.Printf("WARNING: credential storage unavailable (%v), falling back to in-memory cache", err)
		return session.NewMemoryCache(), false, nil
	}

	return cache, true, nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

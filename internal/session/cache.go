package session

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultSlot is the cache key the bearer token is stored under.
const DefaultSlot = "token"

// ErrNotFound is returned by Cache.Get when the slot is empty.
var ErrNotFound = errors.New("credential slot is empty")

// Cache is a persistent key-value store for opaque credential strings.
// All methods must be safe for concurrent use.
type Cache interface {
	// Get returns the value in slot, or ErrNotFound.
	Get(slot string) (string, error)

	// Set stores value in slot, replacing any previous value.
	Set(slot, value string) error

	// Delete empties slot. Deleting an empty slot is not an error.
	Delete(slot string) error

	// Close releases resources held by the cache.
	Close() error
}

// Restore builds the startup session from the cache. A missing slot is the
// anonymous session; any other read error is returned alongside it.
func Restore(c Cache, slot string) (Session, error) {
	token, err := c.Get(slot)
	if errors.Is(err, ErrNotFound) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), fmt.Errorf("reading credential slot %q: %w", slot, err)
	}
	return New(token), nil
}

// MemoryCache is a Cache that keeps values only for the life of the process.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

func (m *MemoryCache) Get(slot string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[slot]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryCache) Set(slot, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[slot] = value
	return nil
}

func (m *MemoryCache) Delete(slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, slot)
	return nil
}

func (m *MemoryCache) Close() error { return nil }

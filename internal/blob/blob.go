// Package blob defines the key-value string store the organizer persists
// its record list into.
package blob

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotSaved is returned by UpdatedAt for a key that was never written
var ErrNotSaved = errors.New("blob never saved")

// Store is an opaque named-string store. Get reports ok=false for a key that
// was never written.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Timestamped is implemented by stores that record when a key was last written
type Timestamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// Memory is an in-process Store
type Memory struct {
	mu      sync.RWMutex
	values  map[string]string
	updated map[string]time.Time
	writes  int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		values:  make(map[string]string),
		updated: make(map[string]time.Time),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.updated[key] = time.Now()
	m.writes++
	return nil
}

// Writes returns how many times Set was called
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.updated[key]
	if !ok {
		return time.Time{}, ErrNotSaved
	}
	return t, nil
}

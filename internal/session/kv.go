// Package session holds the single source of truth for one user's
// profile, language, chat transcript, activity log, and screen state,
// and writes every mutation through to a persistent key-value store.
package session

import (
	"context"
	"sync"
)

// Persisted keys. The load path assumes the shape matches exactly what
// the save path last wrote; there is no schema version field.
const (
	KeyProfile  = "medimart_profile"
	KeyLanguage = "medimart_language"
	KeyMessages = "medimart_messages"
	KeyActivity = "medimart_activity"
)

// KV is the persistent key-value collaborator. Values are canonical
// JSON encodings. Missing keys are reported via the bool, not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryKV is an in-process KV driver used in tests and as the default
// when no Redis address is configured.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	return value, ok, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

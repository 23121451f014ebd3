package store

import (
	"fmt"
	"sync"
)

// KV is the abstract key-to-string store the engine reads entry sources
// from. Values are opaque strings (JSON-encoded entry arrays); the store
// never inspects them. Missing keys are absent, not errors.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Open returns a store for the configured backend.
func Open(backend, path string) (KV, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFileStore(path)
	case "sqlite", "":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

// Memory is an in-process KV used in tests and as an ephemeral backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

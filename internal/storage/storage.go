package storage

import (
	"sync"
)

// Persisted keys. Every value is stored as a string.
const (
	KeyAPIKey     = "api_key"
	KeyTheme      = "theme"
	KeyLanguage   = "language"
	KeyFontSize   = "font_size"
	KeyEcoMode    = "eco_mode"
	KeyUsageDate  = "usage_date"
	KeyUsageCount = "usage_count"
)

// KV is a string key/value store. Get reports a missing or unreadable
// value as not found; Set is best effort and callers decide what a
// failed write means for them.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Memory is an in-process KV
type Memory struct {
	values map[string]string
	mu     sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
	}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, exists := m.values[key]
	return v, exists
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

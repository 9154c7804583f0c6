// Package localstore is the device-local key-value storage backing the
// anonymous cart and the checkout staging slot. Calls are synchronous.
package localstore

import (
	"sort"
	"strings"
	"sync"
)

type Store interface {
	// Get reports ok=false for a missing key.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Keys lists stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prefixed namespaces every key of an underlying store, so many sessions can
// share one database.
type Prefixed struct {
	next   Store
	prefix string
}

func NewPrefixed(next Store, prefix string) *Prefixed {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &Prefixed{next: next, prefix: prefix}
}

func (p *Prefixed) Get(key string) (string, bool, error) {
	return p.next.Get(p.prefix + key)
}

func (p *Prefixed) Set(key, value string) error {
	return p.next.Set(p.prefix+key, value)
}

func (p *Prefixed) Remove(key string) error {
	return p.next.Remove(p.prefix + key)
}

// Package kv provides the string key-value contract the storefront persists
// through, with a Redis-backed implementation and an in-memory one for tests
// and offline use.
package kv

import (
	"context"
	"errors"
	"strings"
	"sync"
)

const keyNamespace = "shopfolio"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable storage surface consumed by the cart and order layers.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Key joins parts into a namespaced storage key.
func Key(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}

// CartKey returns the single fixed key the cart blob lives under.
func CartKey(owner string) string {
	if owner == "" {
		owner = "local"
	}
	return Key("cart", owner)
}

// OrdersKey returns the key holding a user's recorded orders.
func OrdersKey(uid string) string {
	return Key("orders", uid)
}

// MemoryStore is a process-local Store. Used by tests and the CLI when no
// Redis address is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

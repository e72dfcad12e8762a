// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package cache

import (
	"context"
	"sync"
)

// MemoryCache is an in-process KeyValueCache for tests and local
// development. It never expires entries.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the value under (group, key).
func (c *MemoryCache) Get(_ context.Context, group, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[KeyName(group, key)]
	return value, ok, nil
}

// Set writes the value under (group, key).
func (c *MemoryCache) Set(_ context.Context, group, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[KeyName(group, key)] = value
	return nil
}

// Remove deletes (group, key).
func (c *MemoryCache) Remove(_ context.Context, group, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, KeyName(group, key))
	return nil
}

// Contains reports whether (group, key) is present.
func (c *MemoryCache) Contains(_ context.Context, group, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[KeyName(group, key)]
	return ok, nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Compile-time interface check.
var _ KeyValueCache = (*MemoryCache)(nil)

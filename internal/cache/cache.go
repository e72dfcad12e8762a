// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

// Package cache provides the namespaced key-value store backing session
// state. The store is external and shared: at-least-once semantics, no
// cross-key atomicity, and TTL/eviction outside the caller's control.
package cache

import "context"

// KeyValueCache is a namespaced get/set/remove/contains store. Keys are
// namespaced by concatenating group and key; two groups never collide.
// No ordering or transactional guarantee holds across calls.
type KeyValueCache interface {
	// Get returns the value under (group, key), with ok=false when absent.
	Get(ctx context.Context, group, key string) (value string, ok bool, err error)

	// Set writes the value under (group, key).
	Set(ctx context.Context, group, key, value string) error

	// Remove deletes (group, key). Removing an absent key is not an error.
	Remove(ctx context.Context, group, key string) error

	// Contains reports whether (group, key) is present.
	Contains(ctx context.Context, group, key string) (bool, error)
}

// KeyName joins a group and key into the stored key name.
func KeyName(group, key string) string {
	return group + ":" + key
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BoaVaga Contributors

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// RedisCache implements KeyValueCache on a Redis server.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// TTL applied to every Set; zero means no expiry beyond the server's
	// own eviction policy.
	TTL time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a
// retried ping. Startup races against the cache coming up are absorbed by
// exponential backoff.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	backoff := retry.WithMaxDuration(15*time.Second, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("CACHE_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}

	return &RedisCache{client: client, ttl: opts.TTL}, nil
}

// Get returns the value under (group, key).
func (c *RedisCache) Get(ctx context.Context, group, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, KeyName(group, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("CACHE_GET_FAILED").With("group", group).Wrap(err)
	}
	return value, true, nil
}

// Set writes the value under (group, key) with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, group, key, value string) error {
	if err := c.client.Set(ctx, KeyName(group, key), value, c.ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("group", group).Wrap(err)
	}
	return nil
}

// Remove deletes (group, key).
func (c *RedisCache) Remove(ctx context.Context, group, key string) error {
	if err := c.client.Del(ctx, KeyName(group, key)).Err(); err != nil {
		return oops.Code("CACHE_REMOVE_FAILED").With("group", group).Wrap(err)
	}
	return nil
}

// Contains reports whether (group, key) is present.
func (c *RedisCache) Contains(ctx context.Context, group, key string) (bool, error) {
	n, err := c.client.Exists(ctx, KeyName(group, key)).Result()
	if err != nil {
		return false, oops.Code("CACHE_CONTAINS_FAILED").With("group", group).Wrap(err)
	}
	return n > 0, nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil {
		return oops.Code("CACHE_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ KeyValueCache = (*RedisCache)(nil)

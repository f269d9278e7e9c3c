// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed wraps a Cacher with JSON serialization for one value type.
type Typed[T any] struct {
	cache      Cacher
	prefix     string
	defaultTTL time.Duration
}

// NewTyped creates a typed view over cache. All keys are namespaced
// under prefix so related entries can be invalidated together.
func NewTyped[T any](cache Cacher, prefix string, defaultTTL time.Duration) *Typed[T] {
	return &Typed[T]{cache: cache, prefix: prefix, defaultTTL: defaultTTL}
}

// Get returns the cached value, or nil and false on a miss. A payload
// that no longer unmarshals is treated as a miss and dropped.
func (c *Typed[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.cache.Get(ctx, c.prefix+key)
	if err != nil {
		return nil, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		_ = c.cache.Delete(ctx, c.prefix+key)
		return nil, false
	}
	return &value, true
}

// Set stores value under key with the default TTL.
func (c *Typed[T]) Set(ctx context.Context, key string, value *T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Typed[T]) SetWithTTL(ctx context.Context, key string, value *T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a key.
func (c *Typed[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, c.prefix+key)
}

// Invalidate removes every entry in this typed namespace.
func (c *Typed[T]) Invalidate(ctx context.Context) error {
	return c.cache.DeleteByPrefix(ctx, c.prefix)
}

// GetOrSet returns the cached value, computing and storing it on a
// miss. A failed store does not fail the call; the computed value is
// still returned.
func (c *Typed[T]) GetOrSet(ctx context.Context, key string, fn func() (*T, error)) (*T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}
	value, err := fn()
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, value)
	return value, nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewTyped[fixture](newTestMemory(t, time.Minute), "fix:", time.Minute)

	require.NoError(t, c.Set(ctx, "a", &fixture{Name: "x", Count: 3}))
	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestTypedMiss(t *testing.T) {
	c := NewTyped[fixture](newTestMemory(t, time.Minute), "fix:", time.Minute)

	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestTypedCorruptPayloadIsMissAndDropped(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t, time.Minute)
	c := NewTyped[fixture](mem, "fix:", time.Minute)

	require.NoError(t, mem.Set(ctx, "fix:bad", []byte("{not json"), 0))

	_, ok := c.Get(ctx, "bad")
	assert.False(t, ok)
	_, err := mem.Get(ctx, "fix:bad")
	assert.ErrorIs(t, err, ErrCacheMiss, "corrupt entry is evicted")
}

func TestTypedGetOrSetComputesOnce(t *testing.T) {
	ctx := context.Background()
	c := NewTyped[fixture](newTestMemory(t, time.Minute), "fix:", time.Minute)

	calls := 0
	compute := func() (*fixture, error) {
		calls++
		return &fixture{Name: "computed"}, nil
	}

	first, err := c.GetOrSet(ctx, "k", compute)
	require.NoError(t, err)
	second, err := c.GetOrSet(ctx, "k", compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Name, second.Name)
}

func TestTypedGetOrSetPropagatesComputeError(t *testing.T) {
	c := NewTyped[fixture](newTestMemory(t, time.Minute), "fix:", time.Minute)

	wantErr := errors.New("upstream down")
	_, err := c.GetOrSet(context.Background(), "k", func() (*fixture, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestTypedInvalidateClearsNamespaceOnly(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t, time.Minute)
	a := NewTyped[fixture](mem, "a:", time.Minute)
	b := NewTyped[fixture](mem, "b:", time.Minute)

	require.NoError(t, a.Set(ctx, "k", &fixture{Name: "a"}))
	require.NoError(t, b.Set(ctx, "k", &fixture{Name: "b"}))

	require.NoError(t, a.Invalidate(ctx))

	_, ok := a.Get(ctx, "k")
	assert.False(t, ok)
	_, ok = b.Get(ctx, "k")
	assert.True(t, ok)
}

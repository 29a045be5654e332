// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memidem_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/momeni/expertise/pkg/adapter/idempotency/memidem"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newStore(t *testing.T) (*memidem.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	s, err := memidem.New(memidem.WithClock(c.now))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s, c
}

var _ repo.Idempotency = (*memidem.Store)(nil)

func TestMarkAndReplay(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	dup, err := s.IsDuplicate(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, dup)

	require.NoError(t, s.MarkAsProcessed(ctx, "k1", `{"id":"x"}`, time.Minute))
	dup, err = s.IsDuplicate(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, dup)
	r, ok, err := s.Result(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"x"}`, r)

	require.NoError(t, s.Remove(ctx, "k1"))
	dup, err = s.IsDuplicate(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, dup)
	assert.NoError(t, s.Remove(ctx, "missing"))
}

func TestExpiry(t *testing.T) {
	s, c := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.MarkAsProcessed(ctx, "short", "r", time.Second))
	require.NoError(t, s.MarkAsProcessed(ctx, "default", "r", 0))

	c.advance(time.Second)
	dup, err := s.IsDuplicate(ctx, "short")
	require.NoError(t, err)
	assert.False(t, dup, "expired keys must not be reported")

	c.advance(repo.DefaultIdempotencyTTL - 2*time.Second)
	dup, err = s.IsDuplicate(ctx, "default")
	require.NoError(t, err)
	assert.True(t, dup)
	c.advance(time.Second)
	dup, err = s.IsDuplicate(ctx, "default")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestSweep(t *testing.T) {
	s, c := newStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		ttl := time.Duration(i+1) * time.Minute
		require.NoError(t, s.MarkAsProcessed(ctx, fmt.Sprint(i), "r", ttl))
	}
	c.advance(3 * time.Minute)
	assert.Equal(t, 3, s.Sweep())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.Sweep())
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprint(i % 4)
			_ = s.MarkAsProcessed(ctx, key, "r", time.Minute)
			_, _ = s.IsDuplicate(ctx, key)
			s.Sweep()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, s.Len())
}

func TestInvalidSchedule(t *testing.T) {
	_, err := memidem.New(memidem.WithSweepSchedule("every minute"))
	assert.Error(t, err)
}

func TestWithoutSweep(t *testing.T) {
	s, err := memidem.New(memidem.WithSweepSchedule(""))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestReserve(t *testing.T) {
	s, c := newStore(t)
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a pending key must not be reserved twice")
	dup, err := s.IsDuplicate(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, dup)
	_, found, err := s.Result(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, found, "a pending key has no result")

	require.NoError(t, s.MarkAsProcessed(ctx, "k1", "r", time.Hour))
	ok, err = s.Reserve(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	r, found, err := s.Result(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "r", r)

	ok, err = s.Reserve(ctx, "k2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Remove(ctx, "k2"))
	ok, err = s.Reserve(ctx, "k2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "a released key may be reserved again")

	c.advance(time.Minute)
	ok, err = s.Reserve(ctx, "k2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "an expired reservation may be reserved again")
}

func TestConcurrentReserve(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Reserve(ctx, "same", time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, claimed)
}

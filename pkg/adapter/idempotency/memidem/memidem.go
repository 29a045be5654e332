// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memidem provides an in-process reification of the
// repo.Idempotency interface. Keys are kept in a map which is guarded
// by a mutex. Expired keys are hidden by the read operations at once
// and removed by a background sweep which is scheduled using cron.
// The stored keys are lost when the process exits, so this backend is
// suitable for single instance deployments and tests.
package memidem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule is the cron spec of the expired keys sweep.
const DefaultSweepSchedule = "@every 1m"

type entry struct {
	result    string
	pending   bool
	expiresAt time.Time
}

// Store keeps the processed idempotency keys in memory.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	now      func() time.Time
	schedule string
	cron     *cron.Cron
}

// Option is a functional option for the memory Store.
type Option func(s *Store) error

// WithSweepSchedule option configures the cron spec which is used for
// scheduling the sweep of expired keys, e.g., "@every 30s".
// An empty spec disables the background sweep, so expired keys are
// only hidden (and removed when they are read).
func WithSweepSchedule(spec string) Option {
	return func(s *Store) error {
		s.schedule = spec
		return nil
	}
}

// WithClock option replaces the time.Now function.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		s.now = now
		return nil
	}
}

// New instantiates a memory Store and starts its sweep scheduler.
// Caller must call the Close method in order to stop the scheduler.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		entries:  make(map[string]entry),
		now:      time.Now,
		schedule: DefaultSweepSchedule,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if s.schedule == "" {
		return s, nil
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		n := s.Sweep()
		log.Debug(
			context.Background(), "idempotency keys swept",
			slog.Int("removed", n),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return s, nil
}

// IsDuplicate reports if key is reserved or processed, and is not
// expired yet.
func (s *Store) IsDuplicate(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live(key)
	return ok, nil
}

// Reserve claims key with a pending entry, unless a live entry exists.
func (s *Store) Reserve(
	_ context.Context, key string, ttl time.Duration,
) (bool, error) {
	if ttl <= 0 {
		ttl = repo.DefaultIdempotencyTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(key); ok {
		return false, nil
	}
	s.entries[key] = entry{pending: true, expiresAt: s.now().Add(ttl)}
	return true, nil
}

// Result returns the stored result of key. An expired key is removed
// and reported as missing, and so is a reserved key without a result.
func (s *Store) Result(
	_ context.Context, key string,
) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok || e.pending {
		return "", false, nil
	}
	return e.result, true, nil
}

// live returns the key entry if it is not expired. An expired entry is
// removed. Caller must hold s.mu.
func (s *Store) live(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

// MarkAsProcessed stores result for key, replacing its previous result
// (if any). A non-positive ttl selects the repo.DefaultIdempotencyTTL.
func (s *Store) MarkAsProcessed(
	_ context.Context, key, result string, ttl time.Duration,
) error {
	if ttl <= 0 {
		ttl = repo.DefaultIdempotencyTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{result: result, expiresAt: s.now().Add(ttl)}
	return nil
}

// Remove forgets key.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Sweep removes all expired keys and returns their count.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored keys, including the expired keys
// which are not swept yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweep scheduler and waits for a running sweep
// to return.
func (s *Store) Close() error {
	if s.cron == nil {
		return nil
	}
	<-s.cron.Stop().Done()
	return nil
}

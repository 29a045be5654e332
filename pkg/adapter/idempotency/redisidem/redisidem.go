// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package redisidem provides a Redis reification of the
// repo.Idempotency interface. Each processed key is stored as a string
// value with a Redis side expiry, so all instances of the service which
// share a Redis server observe the same keys.
package redisidem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/momeni/expertise/pkg/core/repo"
)

// DefaultPrefix is prepended to all idempotency keys.
const DefaultPrefix = "idempotency:"

// pendingMarker is the value of a reserved key which has no result yet.
// Results are JSON documents, so they never collide with it.
const pendingMarker = "\x00pending"

// Store keeps the processed idempotency keys in Redis.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New wraps the rdb Redis client. Keys are prefixed by prefix, or by
// DefaultPrefix if prefix is empty.
func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Dial connects to the addr Redis server and pings it.
func Dial(
	ctx context.Context, addr, password string, db int,
) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %q: %w", addr, err)
	}
	return rdb, nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// IsDuplicate reports if key exists, either reserved or processed.
func (s *Store) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("EXISTS: %w", err)
	}
	return n > 0, nil
}

// Reserve claims key by SET NX with the pending marker value.
func (s *Store) Reserve(
	ctx context.Context, key string, ttl time.Duration,
) (bool, error) {
	if ttl <= 0 {
		ttl = repo.DefaultIdempotencyTTL
	}
	ok, err := s.rdb.SetNX(ctx, s.key(key), pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("SET NX: %w", err)
	}
	return ok, nil
}

// Result returns the stored result of key. A reserved key without
// a result is reported as missing.
func (s *Store) Result(
	ctx context.Context, key string,
) (string, bool, error) {
	r, err := s.rdb.Get(ctx, s.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil), err == nil && r == pendingMarker:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("GET: %w", err)
	default:
		return r, true, nil
	}
}

// MarkAsProcessed stores result for key with the ttl expiry.
// A non-positive ttl selects the repo.DefaultIdempotencyTTL.
func (s *Store) MarkAsProcessed(
	ctx context.Context, key, result string, ttl time.Duration,
) error {
	if ttl <= 0 {
		ttl = repo.DefaultIdempotencyTTL
	}
	if err := s.rdb.Set(ctx, s.key(key), result, ttl).Err(); err != nil {
		return fmt.Errorf("SET: %w", err)
	}
	return nil
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("DEL: %w", err)
	}
	return nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/momeni/expertise/pkg/adapter/config/settings"
	"github.com/momeni/expertise/pkg/adapter/idempotency/memidem"
	"github.com/momeni/expertise/pkg/adapter/idempotency/redisidem"
	"github.com/momeni/expertise/pkg/core/repo"
)

// These constants name the supported idempotency backends.
const (
	MemoryBackend = "memory"
	RedisBackend  = "redis"
)

// Idempotency contains the idempotency gate settings of the create API.
type Idempotency struct {
	// Backend is either memory (default) or redis. The memory backend
	// loses its keys on restart and is not shared among instances.
	Backend string `yaml:"backend,omitempty"`

	TTL    *settings.Duration `yaml:"ttl,omitempty"`
	MinTTL *settings.Duration `yaml:"ttl-minimum,omitempty"`
	MaxTTL *settings.Duration `yaml:"ttl-maximum,omitempty"`

	// Sweep is the cron schedule of the memory backend expired keys
	// removal, like "@every 1m". It is ignored by the redis backend.
	Sweep *string `yaml:"sweep,omitempty"`

	Redis Redis `yaml:"redis,omitempty"`
}

// Redis contains the connection settings of the redis backend.
type Redis struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// ValidateAndNormalize verifies the backend name and the TTL range and
// fills the missing settings by their defaults.
func (i *Idempotency) ValidateAndNormalize() error {
	switch i.Backend {
	case "":
		i.Backend = MemoryBackend
	case MemoryBackend:
	case RedisBackend:
		if i.Redis.Addr == "" {
			return fmt.Errorf("redis backend needs an address")
		}
	default:
		return fmt.Errorf("unsupported backend: %q", i.Backend)
	}
	settings.Default(&i.TTL, settings.Duration(repo.DefaultIdempotencyTTL))
	if err := settings.VerifyRange(&i.TTL, i.MinTTL, i.MaxTTL); err != nil {
		return fmt.Errorf(
			"VerifyRange(ttl=%v, minb=%v, maxb=%v): %w",
			err.Value, i.MinTTL, i.MaxTTL, err,
		)
	}
	if *i.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	settings.Default(&i.Sweep, memidem.DefaultSweepSchedule)
	if i.Redis.Prefix == "" {
		i.Redis.Prefix = redisidem.DefaultPrefix
	}
	return nil
}

// TTLDuration returns the normalized TTL as a time.Duration.
func (i Idempotency) TTLDuration() time.Duration {
	return i.TTL.Std()
}

// NewStore instantiates the configured backend. The returned closer
// must be called when the store is no longer used, in order to stop
// the memory backend sweeper or close the redis connections.
func (i Idempotency) NewStore(ctx context.Context) (
	repo.Idempotency, func() error, error,
) {
	switch i.Backend {
	case RedisBackend:
		rdb, err := redisidem.Dial(
			ctx, i.Redis.Addr, i.Redis.Password, i.Redis.DB,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("dialing redis: %w", err)
		}
		return redisidem.New(rdb, i.Redis.Prefix), rdb.Close, nil
	default:
		s, err := memidem.New(memidem.WithSweepSchedule(*i.Sweep))
		if err != nil {
			return nil, nil, fmt.Errorf("creating memory store: %w", err)
		}
		return s, s.Close, nil
	}
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files from its users and allows the exweb to instantiate different
// components, from the adapter or use cases layers, using those loaded
// configuration settings.
// The parsed and validated configurations are passed to their ultimate
// components as a series of individual params (for the mandatory items)
// and a series of functional options (for the optional items), so the
// core layer never depends on the configuration file format.
package config

import (
	"fmt"
	"os"

	"github.com/momeni/expertise/pkg/adapter/config/vers"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/expertise/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// These constants define the major, minor, and patch version of the
// configuration settings which are supported by the Config struct.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

// Version is the semantic version of Config struct.
var Version = model.SemVer{Major, Minor, Patch}

// These environment variables override their corresponding settings
// after the configuration file is parsed.
const (
	// DatabaseURLEnv overrides the normal role connection URL.
	DatabaseURLEnv = "DATABASE_URL"

	// RedisAddrEnv overrides the Redis address of idempotency backend.
	RedisAddrEnv = "REDIS_ADDR"
)

// Config contains all settings which are required by different parts
// of the project, such as adapters or use cases.
type Config struct {
	Database    Database    // PostgreSQL database connection settings
	Gin         Gin         // Gin-Gonic instantiation settings
	Metrics     Metrics     // Prometheus exposition settings
	Logging     Logging     // Process-wide structured logging settings
	Idempotency Idempotency // Idempotency gate of the create API
	Usecases    Usecases    // Configuration settings of the use cases

	// Vers contains the configuration file and database schema version
	// strings corresponding to this Config instance and its Database
	// target.
	Vers vers.Config `yaml:",inline"`
}

// Load reads, parses, validates, and normalizes the configuration file
// at the given path. Environment variables, such as DATABASE_URL, are
// applied before the validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes data as a configuration file, overrides its settings
// by the environment variables which are looked up by the lookupEnv
// function, and then validates and normalizes the result.
// The versions section is checked first, so an unsupported file is
// reported by its version instead of its first unknown field.
func Parse(
	data []byte, lookupEnv func(key string) (string, bool),
) (*Config, error) {
	vc, err := vers.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	if err := vc.Validate(Version, schemarp.Version); err != nil {
		return nil, err
	}
	n := &yaml.Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if l := len(n.Content); l != 1 {
		return nil, fmt.Errorf(
			"found %d children nodes, instead of 1 mapping child", l,
		)
	}
	c := &Config{}
	if err := n.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding yaml node: %w", err)
	}
	if lookupEnv != nil {
		c.applyEnv(lookupEnv)
	}
	if err := c.ValidateAndNormalize(); err != nil {
		return nil, fmt.Errorf("validating configs: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookupEnv func(key string) (string, bool)) {
	if u, ok := lookupEnv(DatabaseURLEnv); ok && u != "" {
		c.Database.URL = u
	}
	if addr, ok := lookupEnv(RedisAddrEnv); ok && addr != "" {
		c.Idempotency.Redis.Addr = addr
	}
}

// ValidateAndNormalize validates the configuration settings and
// returns an error if they were not acceptable. It can also modify
// settings in order to normalize them or replace some zero values with
// their expected default values (if any).
func (c *Config) ValidateAndNormalize() error {
	if err := c.Database.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating database settings: %w", err)
	}
	c.Gin.Normalize()
	c.Metrics.Normalize()
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("validating logging settings: %w", err)
	}
	if err := c.Idempotency.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating idempotency settings: %w", err)
	}
	if err := c.Usecases.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("validating use cases settings: %w", err)
	}
	return nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/momeni/expertise/pkg/adapter/config"
	"github.com/momeni/expertise/pkg/adapter/config/settings"
	"github.com/momeni/expertise/pkg/adapter/config/vers"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const minimal = `
database:
    host: db.local
    port: 5432
    name: expertise
versions:
    database: 1.0.0
    config: 1.0.0
`

func noEnv(string) (string, bool) {
	return "", false
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := config.Parse([]byte(minimal), noEnv)
	require.NoError(t, err)
	assert.Equal(t, "scram-sha-256", c.Database.AuthMethod)
	assert.Equal(t, ".", c.Database.PassDir)
	assert.True(t, *c.Gin.Logger)
	assert.True(t, *c.Gin.Recovery)
	assert.Nil(t, c.Gin.RateLimit.RPS)
	assert.False(t, *c.Metrics.Enabled)
	assert.Equal(t, config.DefaultMetricsPath, c.Metrics.Path)
	assert.Equal(t, config.MemoryBackend, c.Idempotency.Backend)
	assert.Equal(t, repo.DefaultIdempotencyTTL, c.Idempotency.TTLDuration())
	assert.Equal(t, "@every 1m", *c.Idempotency.Sweep)
	assert.Equal(t, "idempotency:", c.Idempotency.Redis.Prefix)
	assert.Nil(t, c.Usecases.Expertise.MaxPhotos)
}

func TestParseEnvOverrides(t *testing.T) {
	data := minimal + `
idempotency:
    backend: redis
`
	_, err := config.Parse([]byte(data), noEnv)
	assert.Error(t, err, "redis backend without an address")

	c, err := config.Parse([]byte(data), env(map[string]string{
		config.DatabaseURLEnv: "postgresql://exweb:pass@db:5432/expertise",
		config.RedisAddrEnv:   "cache:6379",
	}))
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", c.Idempotency.Redis.Addr)
	assert.Equal(
		t, "postgresql://exweb:pass@db:5432/expertise", c.Database.URL,
	)
}

func TestParseRanges(t *testing.T) {
	data := minimal + `
gin:
    rate-limit:
        rps: 2.5
idempotency:
    ttl: 30m
    ttl-minimum: 1m
    ttl-maximum: 2h
usecases:
    expertise:
        max-photos: 5
        max-photos-maximum: 6
`
	c, err := config.Parse([]byte(data), noEnv)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, c.Idempotency.TTLDuration())
	assert.Equal(t, 5, *c.Usecases.Expertise.MaxPhotos)
	assert.Equal(t, 2.5, *c.Gin.RateLimit.RPS)
	assert.Equal(t, 1, *c.Gin.RateLimit.Burst)

	uc, err := c.Usecases.Expertise.NewUseCase(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, uc.MaxPhotos())
}

func TestParseRejects(t *testing.T) {
	for name, extra := range map[string]string{
		"ttl above max": `
idempotency:
    ttl: 3h
    ttl-maximum: 2h
`,
		"unknown backend": `
idempotency:
    backend: memcached
`,
		"max photos above max": `
usecases:
    expertise:
        max-photos: 7
        max-photos-maximum: 6
`,
		"zero max photos": `
usecases:
    expertise:
        max-photos: 0
`,
		"log level": `
logging:
    level: loud
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse([]byte(minimal+extra), noEnv)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsVersions(t *testing.T) {
	data := `
versions:
    database: 2.0.0
    config: 1.0.0
`
	_, err := config.Parse([]byte(data), noEnv)
	assert.ErrorContains(t, err, "database schema version 2.0.0")

	data = `
versions:
    database: 1.0.0
    config: 1.1.0
`
	_, err = config.Parse([]byte(data), noEnv)
	assert.ErrorContains(t, err, "config version 1.1.0")
}

func ExampleConfig_marshal() {
	l, r, m := true, true, false
	rps, burst, maxPhotos := 5.5, 10, 3
	ttl := settings.Duration(time.Hour)
	c := &config.Config{
		Database: config.Database{
			Host:    "127.0.0.1",
			Port:    5432,
			Name:    "expertise",
			PassDir: "/var/lib/exweb/db",
		},
		Gin: config.Gin{
			Logger:   &l,
			Recovery: &r,
			RateLimit: config.RateLimit{
				RPS:   &rps,
				Burst: &burst,
			},
		},
		Metrics: config.Metrics{
			Enabled: &m,
			Path:    "/metrics",
		},
		Logging: config.Logging{
			Format: "json",
			Level:  "info",
		},
		Idempotency: config.Idempotency{
			Backend: config.MemoryBackend,
			TTL:     &ttl,
		},
		Usecases: config.Usecases{
			Expertise: config.Expertise{
				MaxPhotos: &maxPhotos,
			},
		},
		Vers: vers.Config{
			Versions: vers.Versions{
				Database: model.SemVer{1, 0, 0},
				Config:   model.SemVer{1, 0, 0},
			},
		},
	}
	b, err := yaml.Marshal(c)
	fmt.Println(err)
	fmt.Println(string(b))
	// Output:
	// <nil>
	// database:
	//     host: 127.0.0.1
	//     port: 5432
	//     name: expertise
	//     pass-dir: /var/lib/exweb/db
	// gin:
	//     logger: true
	//     recovery: true
	//     rate-limit:
	//         rps: 5.5
	//         burst: 10
	// metrics:
	//     enabled: false
	//     path: /metrics
	// logging:
	//     format: json
	//     level: info
	// idempotency:
	//     backend: memory
	//     ttl: 1h
	// usecases:
	//     expertise:
	//         max-photos: 3
	// versions:
	//     database: 1.0.0
	//     config: 1.0.0
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"github.com/momeni/expertise/pkg/adapter/config/settings"
	"github.com/momeni/expertise/pkg/adapter/restful/gin"
)

// DefaultMetricsPath is the default path of the metrics exposition.
const DefaultMetricsPath = "/metrics"

// Gin contains the gin-gonic related configuration settings.
// Fields are defined as pointers, so it is possible to detect if they
// are or are not initialized and fill them by their defaults.
type Gin struct {
	Logger    *bool     // Whether to register the gin.Logger() middleware
	Recovery  *bool     // Whether to register the gin.Recovery() middleware
	RateLimit RateLimit `yaml:"rate-limit"`
}

// RateLimit configures the per-client rate limiting middleware.
// A nil or non-positive RPS disables it.
type RateLimit struct {
	RPS   *float64 `yaml:"rps,omitempty"`   // sustained requests per second
	Burst *int     `yaml:"burst,omitempty"` // bucket size, at least 1
}

// Normalize fills the missing gin settings by their defaults.
func (g *Gin) Normalize() {
	settings.Default(&g.Logger, true)
	settings.Default(&g.Recovery, true)
	if g.RateLimit.RPS != nil && *g.RateLimit.RPS > 0 {
		settings.Default(&g.RateLimit.Burst, 1)
		if *g.RateLimit.Burst < 1 {
			*g.RateLimit.Burst = 1
		}
	}
}

// NewEngine instantiates a new gin-gonic engine instance based on
// the `g` settings. The m metrics middleware is registered if m is
// not nil. Metrics are registered before the rate limiter, so rejected
// requests are counted too.
func (g Gin) NewEngine(m *gin.Metrics) *gin.Engine {
	middlewares := make([]gin.HandlerFunc, 0, 4)
	if *g.Recovery {
		middlewares = append(middlewares, gin.Recovery())
	}
	if *g.Logger {
		middlewares = append(middlewares, gin.Logger())
	}
	if m != nil {
		middlewares = append(middlewares, m.Middleware())
	}
	if rl := g.RateLimit; rl.RPS != nil && *rl.RPS > 0 {
		middlewares = append(middlewares, gin.RateLimit(*rl.RPS, *rl.Burst))
	}
	return gin.New(middlewares...)
}

// Metrics contains the Prometheus exposition settings.
type Metrics struct {
	Enabled *bool  // Whether to instrument and expose the metrics
	Path    string `yaml:"path,omitempty"` // Exposition path
}

// Normalize fills the missing metrics settings by their defaults.
func (m *Metrics) Normalize() {
	settings.Nil2Zero(&m.Enabled)
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
}

// NewMetrics instantiates the HTTP collectors if metrics are enabled.
// Otherwise, it returns nil without errors.
func (m Metrics) NewMetrics() (*gin.Metrics, error) {
	if !*m.Enabled {
		return nil, nil
	}
	return gin.NewMetrics()
}

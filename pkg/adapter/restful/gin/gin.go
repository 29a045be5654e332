// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package gin wraps the gin-gonic framework, so the configuration and
// resource packages may instantiate an engine with the expected
// middlewares. It also provides the per-client rate limiting and
// the Prometheus instrumentation middlewares.
package gin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type HandlerFunc = gin.HandlerFunc
type Engine = gin.Engine

func New(middlewares ...HandlerFunc) *Engine {
	e := gin.New()
	e.Use(middlewares...)
	return e
}

func Logger() HandlerFunc {
	return gin.Logger()
}

func Recovery() HandlerFunc {
	return gin.Recovery()
}

// IdleLimiterTTL is the duration which a client limiter may stay idle
// before being dropped by the RateLimit middleware.
const IdleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter    *rate.Limiter
	lastActive time.Time
}

// RateLimit returns a middleware which allows each client IP address
// to send rps requests per second with bursts of up to burst requests.
// Extra requests are rejected with 429 (Too Many Requests). Idle
// limiters are dropped lazily while new clients are registered.
func RateLimit(rps float64, burst int) HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*clientLimiter)
	lastCleanup := time.Now()
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()
		mu.Lock()
		if now.Sub(lastCleanup) > IdleLimiterTTL {
			for k, cl := range limiters {
				if now.Sub(cl.lastActive) > IdleLimiterTTL {
					delete(limiters, k)
				}
			}
			lastCleanup = now
		}
		cl, ok := limiters[ip]
		if !ok {
			cl = &clientLimiter{
				limiter: rate.NewLimiter(rate.Limit(rps), burst),
			}
			limiters[ip] = cl
		}
		cl.lastActive = now
		allowed := cl.limiter.AllowN(now, 1)
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail": "too many requests",
			})
			return
		}
		c.Next()
	}
}

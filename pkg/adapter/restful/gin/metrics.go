// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the Prometheus collectors of the HTTP layer.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	replays  prometheus.Counter
}

// NewMetrics creates the HTTP collectors and registers them in a fresh
// registry, alongside the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exweb_http_requests_total",
				Help: "Total number of HTTP requests, partitioned by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exweb_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds, partitioned by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		replays: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "exweb_idempotent_replays_total",
				Help: "Total number of requests which were answered by a stored idempotent result.",
			},
		),
	}
	for _, c := range []prometheus.Collector{
		m.requests,
		m.duration,
		m.replays,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

// Middleware observes the count and duration of requests. Requests
// which match no route are labeled by the "unmatched" route.
func (m *Metrics) Middleware() HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(method, route, status).Inc()
		m.duration.WithLabelValues(method, route).Observe(
			time.Since(start).Seconds(),
		)
	}
}

// Handler exposes the registered collectors in the Prometheus text
// exposition format.
func (m *Metrics) Handler() HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
}

// IdempotentReplay counts one replayed idempotent result. It is safe to
// be called on a nil Metrics.
func (m *Metrics) IdempotentReplay() {
	if m == nil {
		return
	}
	m.replays.Inc()
}

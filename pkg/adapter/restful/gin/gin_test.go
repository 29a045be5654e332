// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package gin_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	gogin "github.com/gin-gonic/gin"
	"github.com/momeni/expertise/pkg/adapter/restful/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gogin.SetMode(gogin.TestMode)
	os.Exit(m.Run())
}

func ping(c *gogin.Context) {
	c.String(http.StatusOK, "pong")
}

func get(e *gin.Engine, path, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	e.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	e := gin.New(gin.RateLimit(0.001, 2))
	e.GET("/ping", ping)

	for i := 0; i < 2; i++ {
		w := get(e, "/ping", "10.0.0.1:1000")
		require.Equal(t, http.StatusOK, w.Code, "request #%d", i)
	}
	w := get(e, "/ping", "10.0.0.1:1001")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"detail":"too many requests"}`, w.Body.String())

	w = get(e, "/ping", "10.0.0.2:1000")
	assert.Equal(t, http.StatusOK, w.Code, "other clients have own limits")
}

func TestMetrics(t *testing.T) {
	m, err := gin.NewMetrics()
	require.NoError(t, err)
	e := gin.New(m.Middleware())
	e.GET("/ping", ping)
	e.GET("/metrics", m.Handler())

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, get(e, "/ping", "10.0.0.1:1").Code)
	}
	require.Equal(t, http.StatusNotFound, get(e, "/nope", "10.0.0.1:1").Code)
	m.IdempotentReplay()

	w := get(e, "/metrics", "10.0.0.1:1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, line := range []string{
		`exweb_http_requests_total{method="GET",route="/ping",status="200"} 2`,
		`exweb_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`exweb_http_request_duration_seconds_count{method="GET",route="/ping"} 2`,
		`exweb_idempotent_replays_total 1`,
	} {
		assert.True(
			t, strings.Contains(body, line), "missing %q in:\n%s", line, body,
		)
	}
}

func TestNilMetricsReplay(t *testing.T) {
	var m *gin.Metrics
	assert.NotPanics(t, m.IdempotentReplay)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routes_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gogin "github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/momeni/expertise/internal/test/dbcontainer"
	"github.com/momeni/expertise/pkg/adapter/config"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/adapter/restful/gin"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/expertisesrs"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/routes"
	"github.com/stretchr/testify/suite"
)

const testConfig = `
database:
    url: postgresql://unused
metrics:
    enabled: true
idempotency:
    backend: memory
    ttl: 10m
    sweep: ""
versions:
    database: 1.0.0
    config: 1.0.0
`

type IntegrationRoutesTestSuite struct {
	suite.Suite

	Ctx    context.Context
	Pool   *postgres.Pool
	Gin    *gin.Engine
	Closer func() error
}

func TestIntegrationRoutesTestSuite(t *testing.T) {
	ctx := context.Background()
	_, pool, dfrs, ok := dbcontainer.New(ctx, 60*time.Second, t)
	for _, f := range dfrs {
		defer f()
	}
	if !ok {
		return // errors are already logged
	}
	suite.Run(t, &IntegrationRoutesTestSuite{Ctx: ctx, Pool: pool})
}

func (irts *IntegrationRoutesTestSuite) SetupSuite() {
	gogin.SetMode(gogin.TestMode)
	err := dbcontainer.InitDevSchema(irts.Ctx, irts.Pool)
	irts.Require().NoError(err, "failed to create schema contents")

	c, err := config.Parse([]byte(testConfig), nil)
	irts.Require().NoError(err, "failed to parse test config")
	m, err := c.Metrics.NewMetrics()
	irts.Require().NoError(err)
	irts.Require().NotNil(m)
	irts.Gin = c.Gin.NewEngine(m)
	irts.Require().NotNil(irts.Gin, "cannot instantiate Gin engine")
	irts.Closer, err = routes.Register(irts.Ctx, irts.Gin, irts.Pool, c, m)
	irts.Require().NoError(err, "failed to register Gin routes")
}

func (irts *IntegrationRoutesTestSuite) TearDownSuite() {
	if irts.Closer != nil {
		irts.NoError(irts.Closer())
	}
}

func (irts *IntegrationRoutesTestSuite) do(
	method, path, body string, headers ...string,
) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	irts.Gin.ServeHTTP(w, req)
	return w
}

func (irts *IntegrationRoutesTestSuite) TestCreateReplayAndRead() {
	body := `{
		"vehicleId": "CAR-ROUTES",
		"answers": [
			{"questionId": 1, "value": true, "description": "cracked screen",
			 "photoUrls": ["https://cdn.example/1.jpg", "https://cdn.example/2.jpg"]},
			{"questionId": 2, "value": false}
		]
	}`
	key := []string{expertisesrs.IdempotencyKeyHeader, "routes-1"}
	w := irts.do(http.MethodPost, "/api/v1/expertises", body, key...)
	irts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	first := w.Body.String()

	w = irts.do(http.MethodPost, "/api/v1/expertises", body, key...)
	irts.Require().Equal(http.StatusCreated, w.Code)
	irts.Equal("true", w.Header().Get(expertisesrs.ReplayHeader))
	irts.JSONEq(first, w.Body.String())

	w = irts.do(http.MethodGet, "/api/v1/expertises/CAR-ROUTES", "")
	irts.Require().Equal(http.StatusOK, w.Code)
	var p struct {
		VehicleID string `json:"vehicleId"`
		Items     []struct {
			QuestionID int64 `json:"questionId"`
			Previous   struct {
				AnsweredYes bool     `json:"answeredYes"`
				Description *string  `json:"description"`
				PhotoURLs   []string `json:"photoUrls"`
			} `json:"previous"`
		} `json:"items"`
	}
	irts.Require().NoError(json.Unmarshal(w.Body.Bytes(), &p))
	irts.Equal("CAR-ROUTES", p.VehicleID)
	irts.Require().NotEmpty(p.Items)
	irts.Equal(int64(1), p.Items[0].QuestionID)
	irts.True(p.Items[0].Previous.AnsweredYes)
	irts.Require().NotNil(p.Items[0].Previous.Description)
	irts.Equal("cracked screen", *p.Items[0].Previous.Description)
	irts.Equal([]string{
		"https://cdn.example/1.jpg", "https://cdn.example/2.jpg",
	}, p.Items[0].Previous.PhotoURLs)

	w = irts.do(http.MethodGet, config.DefaultMetricsPath, "")
	irts.Require().Equal(http.StatusOK, w.Code)
	irts.Contains(w.Body.String(), "exweb_idempotent_replays_total 1")
	irts.Contains(
		w.Body.String(),
		`exweb_http_requests_total{method="POST",route="/api/v1/expertises",status="201"} 2`,
	)
}

func (irts *IntegrationRoutesTestSuite) TestUnknownQuestion() {
	w := irts.do(http.MethodPost, "/api/v1/expertises", `{
		"vehicleId": "CAR-ROUTES-2",
		"answers": [{"questionId": 404, "value": false}]
	}`)
	irts.Equal(http.StatusUnprocessableEntity, w.Code)
	irts.JSONEq(`{"detail": "question not found: 404"}`, w.Body.String())
}

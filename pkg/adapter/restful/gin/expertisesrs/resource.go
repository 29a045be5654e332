// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package expertisesrs realizes the expertises resource, allowing the
// vehicle inspection REST APIs to be accepted and delegated to the
// expertise use cases respectively.
package expertisesrs

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/serdser"
	"github.com/momeni/expertise/pkg/core/cerr"
	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/momeni/expertise/pkg/core/usecase/expertiseuc"
)

const (
	// IdempotencyKeyHeader is the request header which carries the
	// client chosen idempotency key of a create request.
	IdempotencyKeyHeader = "Idempotency-Key"

	// ReplayHeader is set on responses which were replayed from a
	// stored idempotent result.
	ReplayHeader = "Idempotent-Replay"

	// MaxIdempotencyKeyLen limits the accepted idempotency key length.
	MaxIdempotencyKeyLen = 255

	// MaxReservationTTL limits how long an idempotency key is reserved
	// while its create request is running.
	MaxReservationTTL = time.Minute
)

// ErrRequestInProgress reports a create request whose idempotency key
// is reserved by another request which has not finished yet.
var ErrRequestInProgress = errors.New(
	"a request with the same idempotency key is in progress",
)

// ReplayObserver is notified whenever a stored result is replayed.
type ReplayObserver interface {
	IdempotentReplay()
}

type resource struct {
	expertise *expertiseuc.UseCase
	idem      repo.Idempotency
	ttl       time.Duration
	observer  ReplayObserver
}

// Option configures the optional collaborators of the resource.
type Option func(rs *resource)

// WithIdempotency gates the create API by the idem store. Results are
// kept for ttl, or repo.DefaultIdempotencyTTL if ttl is not positive.
func WithIdempotency(idem repo.Idempotency, ttl time.Duration) Option {
	return func(rs *resource) {
		rs.idem = idem
		rs.ttl = ttl
	}
}

// WithReplayObserver registers o to be notified of replayed results.
func WithReplayObserver(o ReplayObserver) Option {
	return func(rs *resource) {
		rs.observer = o
	}
}

// Register instantiates a resource adapting the expertise use case
// instance with the relevant REST APIs including:
//  1. GET request to /expertises/:vehicleId
//     in order to fetch the questions with the previous answers,
//  2. POST request to /expertises
//     in order to record a new inspection,
//  3. PATCH request to /expertises/id/:id
//     in order to move an inspection to another vehicle,
//  4. DELETE request to /expertises/id/:id
//     in order to remove an inspection with its answers and photos.
//
// Paths are relative to the r router group.
func Register(
	r *gin.RouterGroup, expertise *expertiseuc.UseCase, opts ...Option,
) {
	serdser.RegisterValidations()
	rs := &resource{expertise: expertise}
	for _, opt := range opts {
		opt(rs)
	}
	r.GET("expertises/:vehicleId", rs.ReadForVehicle)
	r.POST("expertises", rs.Create)
	r.PATCH("expertises/id/:id", rs.Reassign)
	r.DELETE("expertises/id/:id", rs.Delete)
}

func (rs *resource) ReadForVehicle(c *gin.Context) {
	req := rs.DserReadReq(c)
	if req == nil {
		return
	}
	p, err := rs.expertise.ReadForVehicle(c, req.VehicleID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create records a new inspection. When an idempotency key is given,
// the key is reserved before running the use case. A stored result of
// the key is replayed instead, and a key whose request is still running
// is rejected with 409, so overlapping retries create one inspection.
func (rs *resource) Create(c *gin.Context) {
	key, ok := rs.DserIdempotencyKey(c)
	if !ok {
		return
	}
	if key != "" && rs.replay(c, key) {
		return
	}
	req := rs.DserCreateReq(c)
	if req == nil {
		return
	}
	if key != "" {
		reserved, err := rs.idem.Reserve(c, key, rs.reservationTTL())
		if err != nil {
			serdser.SerErr(c, err)
			return
		}
		if !reserved {
			if !rs.replay(c, key) {
				serdser.SerErr(c, cerr.Conflict(ErrRequestInProgress))
			}
			return
		}
	}
	id, err := rs.expertise.Create(c, req.VehicleID, req.Answers)
	if err != nil {
		if key != "" {
			rs.release(c, key)
		}
		serdser.SerErr(c, err)
		return
	}
	resp := createResp{ID: id}
	if key != "" {
		rs.remember(c, key, resp)
	}
	c.JSON(http.StatusCreated, resp)
}

// replay writes the stored result of key, if any, and reports if the
// response is written.
func (rs *resource) replay(c *gin.Context, key string) bool {
	body, found, err := rs.idem.Result(c, key)
	if err != nil {
		serdser.SerErr(c, err)
		return true
	}
	if !found {
		return false
	}
	log.Info(c, "replaying idempotent result")
	if rs.observer != nil {
		rs.observer.IdempotentReplay()
	}
	c.Header(ReplayHeader, "true")
	c.Data(
		http.StatusCreated,
		"application/json; charset=utf-8",
		[]byte(body),
	)
	return true
}

// reservationTTL bounds how long a key stays reserved if its request
// never settles it, e.g., because the process exits.
func (rs *resource) reservationTTL() time.Duration {
	if rs.ttl > 0 && rs.ttl < MaxReservationTTL {
		return rs.ttl
	}
	return MaxReservationTTL
}

// release forgets the reservation of key after a failed create, so the
// client may retry with the same key.
func (rs *resource) release(c *gin.Context, key string) {
	if err := rs.idem.Remove(c, key); err != nil {
		log.Warn(c, "cannot release idempotency key", log.Err("err", err))
	}
}

// remember stores resp for key. Failures are only logged because the
// inspection is already committed and its id must reach the client.
func (rs *resource) remember(c *gin.Context, key string, resp createResp) {
	b, err := json.Marshal(resp)
	if err == nil {
		err = rs.idem.MarkAsProcessed(c, key, string(b), rs.ttl)
	}
	if err != nil {
		log.Warn(
			c, "cannot store idempotent result",
			log.UUID("id", resp.ID), log.Err("err", err),
		)
	}
}

func (rs *resource) Reassign(c *gin.Context) {
	req := rs.DserReassignReq(c)
	if req == nil {
		return
	}
	in, err := rs.expertise.Reassign(c, req.ID, req.Version, req.VehicleID)
	if err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.JSON(http.StatusOK, SerInspection(in))
}

func (rs *resource) Delete(c *gin.Context) {
	req := rs.DserIDReq(c)
	if req == nil {
		return
	}
	if err := rs.expertise.Delete(c, req.ID); err != nil {
		serdser.SerErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

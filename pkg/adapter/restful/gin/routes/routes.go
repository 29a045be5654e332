// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package routes contains all resource packages and facilitates
// instantiation and registration of all repo, use case, and resource
// packages based on the user provided configuration settings.
package routes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/momeni/expertise/pkg/adapter/config"
	restgin "github.com/momeni/expertise/pkg/adapter/restful/gin"
	"github.com/momeni/expertise/pkg/adapter/restful/gin/expertisesrs"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Register instantiates relevant repositories and use cases based on
// the c configuration settings. The p connections pool is passed to
// the use case instances, so they may acquire/release connections
// and transactions on demand. Each use case package is named like
// expertiseuc and each repository package is named like inspectionsrp.
// Register instantiates a series of "resource" structs, from packages
// which are named like expertisesrs, in order to adapt the use cases
// interfaces with the REST APIs. These resources are registered as
// request handlers using the e gin-gonic engine instance.
//
// The idempotency store is instantiated based on c too and the
// returned closer must be called after the engine stops serving.
// If m is not nil, its exposition handler is registered at the
// configured metrics path.
func Register(
	ctx context.Context,
	e *gin.Engine,
	p repo.Pool,
	c *config.Config,
	m *restgin.Metrics,
) (closer func() error, err error) {
	expertiseUseCase, err := c.Usecases.Expertise.NewUseCase(p)
	if err != nil {
		return nil, fmt.Errorf("creating expertise use case: %w", err)
	}
	idem, closer, err := c.Idempotency.NewStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating idempotency store: %w", err)
	}
	opts := []expertisesrs.Option{
		expertisesrs.WithIdempotency(idem, c.Idempotency.TTLDuration()),
	}
	if m != nil {
		opts = append(opts, expertisesrs.WithReplayObserver(m))
		e.GET(c.Metrics.Path, m.Handler())
	}
	r := e.Group("/api/v1")
	expertisesrs.Register(r, expertiseUseCase, opts...)
	return closer, nil
}

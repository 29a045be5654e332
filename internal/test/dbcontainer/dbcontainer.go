// Copyright (c) 2023 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dbcontainer is an internal helper for the integration test
// suites which need a real PostgreSQL DBMS server. It starts a
// temporary postgres:16 podman (or docker) container, connects to it
// using a *postgres.Pool, and may fill it with the development schema.
package dbcontainer

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/bitcomplete/sqltestutil"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/stretchr/testify/assert"
)

// New creates and starts up a postgres container.
// The podman.service (or docker daemon) needs to be started and the
// DOCKER_HOST environment variable needs to be initialized beforehand
// like DOCKER_HOST=unix://$XDG_RUNTIME_DIR/podman/podman.sock
// in order to be identified by this function properly. If DOCKER_HOST
// is not set, the calling test is skipped.
// The ctx will be used during the container start up and shutdown,
// while the timeout will be considered only during the start up phase.
func New(ctx context.Context, timeout time.Duration, t *testing.T) (
	pg *sqltestutil.PostgresContainer,
	pool *postgres.Pool,
	dfrs []func(),
	ok bool,
) {
	if os.Getenv("DOCKER_HOST") == "" {
		t.Skip("DOCKER_HOST is not set, skipping the database tests")
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	dbmsVer := "16"
	pg, err := sqltestutil.StartPostgresContainer(ctx2, dbmsVer)
	ok = assert.NoError(t, err, "failed to set up a test database")
	if !ok {
		return
	}
	dfrs = append(dfrs, func() {
		err := pg.Shutdown(ctx)
		assert.NoError(t, err, "failed to shutdown test database")
	})
	u := pg.ConnectionString()
	for pool == nil {
		pool, err = postgres.NewPool(ctx2, u)
		if postgres.HasCode(err, postgres.CannotConnectNow) {
			continue // the database system is starting up
		}
		var netErr net.Error
		if ctx2.Err() == nil && errors.As(err, &netErr) {
			continue // tolerate network errors until a timeout
		}
		ok = assert.NoError(t, err, "cannot connect to test database")
		if !ok {
			return
		}
	}
	dfrs = append(dfrs, func() {
		err := pool.Close()
		assert.NoError(t, err, "failed to close the connections pool")
	})
	return
}

// InitDevSchema creates the expertise tables and the development
// questions catalog in the default schema of the p database.
func InitDevSchema(ctx context.Context, p repo.Pool) error {
	return p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return schemarp.NewInitializer(tx).InitDevSchema(ctx)
		})
	})
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/expertise/internal/test/memrepo"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inspection(vehicleID string) *model.Inspection {
	return &model.Inspection{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestConcurrentCommitsKeepAllWrites(t *testing.T) {
	st := memrepo.New()
	p := st.Pool()
	ctx := context.Background()
	const n = 8
	var started, done sync.WaitGroup
	started.Add(n)
	for i := 0; i < n; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
				return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
					in := inspection("CAR123")
					err := memrepo.Inspections{}.Tx(tx).CreateInspection(ctx, in)
					started.Done()
					started.Wait()
					return err
				})
			})
			assert.NoError(t, err)
		}()
	}
	done.Wait()
	assert.Equal(t, n, st.Count())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	st := memrepo.New()
	errBoom := errors.New("boom")
	err := st.Pool().Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			iq := memrepo.Inspections{}.Tx(tx)
			in := inspection("CAR123")
			require.NoError(t, iq.CreateInspection(ctx, in))
			latest, err := iq.Latest(ctx, "CAR123")
			require.NoError(t, err)
			require.NotNil(t, latest, "staged writes are visible in tx")
			return errBoom
		})
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, st.Count())
}

func TestStaleReassignFailsOnCommit(t *testing.T) {
	st := memrepo.New()
	in := inspection("CAR123")
	st.Add(in)
	p := st.Pool()
	ctx := context.Background()

	var ready, committed sync.WaitGroup
	ready.Add(1)
	committed.Add(1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
			return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
				_, err := memrepo.Inspections{}.Tx(tx).Reassign(
					ctx, in.ID, 0, "CAR456",
				)
				ready.Done()
				committed.Wait()
				return err
			})
		})
	}()
	ready.Wait()
	err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			_, err := memrepo.Inspections{}.Tx(tx).Reassign(
				ctx, in.ID, 0, "CAR789",
			)
			return err
		})
	})
	require.NoError(t, err)
	committed.Done()
	assert.ErrorIs(t, <-errCh, repo.ErrVersionConflict)

	snap := st.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "CAR789", snap[0].VehicleID)
	assert.Equal(t, int64(1), snap[0].Version)
}

func TestReadTxRejectsWrites(t *testing.T) {
	st := memrepo.New()
	err := st.Pool().Conn(context.Background(), func(
		ctx context.Context, c repo.Conn,
	) error {
		return c.ReadTx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return memrepo.Inspections{}.Tx(tx).CreateInspection(
				ctx, inspection("CAR123"),
			)
		})
	})
	assert.Error(t, err)
	assert.Equal(t, 0, st.Count())
}

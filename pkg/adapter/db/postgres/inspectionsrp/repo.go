// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package inspectionsrp provides a reification of the repo.Inspections
// interface, storing each inspection aggregate in the inspections,
// answers, and photos tables.
package inspectionsrp

import (
	"context"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Repo represents the inspections repository.
type Repo struct {
}

// New instantiates an inspections Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn as created by this adapter layer.
// Otherwise, it will panic.
func (inspections *Repo) Conn(c repo.Conn) repo.InspectionsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) Latest(ctx context.Context, vehicleID string) (*model.Inspection, error) {
	return Latest(ctx, cq.Conn, vehicleID)
}

func (cq connQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Inspection, error) {
	return Get(ctx, cq.Conn, id)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer.
// Otherwise, it will panic.
func (inspections *Repo) Tx(tx repo.Tx) repo.InspectionsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) Latest(ctx context.Context, vehicleID string) (*model.Inspection, error) {
	return Latest(ctx, tq.Tx, vehicleID)
}

func (tq txQueryer) Get(ctx context.Context, id uuid.UUID) (*model.Inspection, error) {
	return Get(ctx, tq.Tx, id)
}

func (tq txQueryer) CreateInspection(ctx context.Context, in *model.Inspection) error {
	return CreateInspection(ctx, tq.Tx, in)
}

func (tq txQueryer) CreateAnswer(ctx context.Context, a *model.Answer, position int) error {
	return CreateAnswer(ctx, tq.Tx, a, position)
}

func (tq txQueryer) CreatePhoto(ctx context.Context, p *model.Photo, position int) error {
	return CreatePhoto(ctx, tq.Tx, p, position)
}

func (tq txQueryer) Reassign(
	ctx context.Context, id uuid.UUID, expectedVersion int64, vehicleID string,
) (*model.Inspection, error) {
	return Reassign(ctx, tq.Tx, id, expectedVersion, vehicleID)
}

func (tq txQueryer) Delete(ctx context.Context, id uuid.UUID) error {
	return Delete(ctx, tq.Tx, id)
}

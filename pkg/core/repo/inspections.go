// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/core/model"
)

// These errors are reported by the inspections repositories (possibly
// after wrapping) and are classified by the use cases.
var (
	ErrInspectionNotFound = errors.New("inspection not found")
	ErrVersionConflict    = errors.New("inspection was modified concurrently")
)

// InspectionsQueryer contains the read operations of the inspections
// repository. Returned inspections are complete aggregates, i.e., their
// Answers and Photos are loaded in submission order.
type InspectionsQueryer interface {
	// Latest returns the most recently created inspection of the given
	// vehicle. If the vehicle has no inspection, nil is returned with
	// a nil error.
	Latest(ctx context.Context, vehicleID string) (*model.Inspection, error)

	// Get returns the id inspection or ErrInspectionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Inspection, error)
}

type InspectionsConnQueryer interface {
	InspectionsQueryer
}

// InspectionsTxQueryer adds the write operations which must be run
// in a transaction, so an inspection and its owned answers and photos
// become visible together or not at all.
type InspectionsTxQueryer interface {
	InspectionsQueryer

	// CreateInspection inserts the inspection row. Its ID, CreatedAt,
	// and Version fields must be filled by the caller. Answers are
	// ignored and must be added by CreateAnswer.
	CreateInspection(ctx context.Context, in *model.Inspection) error

	// CreateAnswer inserts the answer row at the given position of its
	// inspection. Photos are ignored and must be added by CreatePhoto.
	CreateAnswer(ctx context.Context, a *model.Answer, position int) error

	// CreatePhoto inserts the photo row at the given position of its
	// answer.
	CreatePhoto(ctx context.Context, p *model.Photo, position int) error

	// Reassign moves the id inspection to vehicleID if and only if its
	// stored version equals expectedVersion. The version is incremented
	// and the updated inspection is returned. A stale version causes
	// ErrVersionConflict and a missing row causes ErrInspectionNotFound.
	Reassign(
		ctx context.Context,
		id uuid.UUID,
		expectedVersion int64,
		vehicleID string,
	) (*model.Inspection, error)

	// Delete removes the id inspection with its answers and photos,
	// children first. A missing row causes ErrInspectionNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Inspections is the inspections repository.
type Inspections interface {
	Conn(Conn) InspectionsConnQueryer
	Tx(Tx) InspectionsTxQueryer
}

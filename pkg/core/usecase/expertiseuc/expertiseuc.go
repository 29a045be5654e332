// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package expertiseuc contains the expertise UseCase which supports the
// vehicle inspection related use cases:
//  1. Reading the question catalog together with the previous answers
//     of a vehicle (the projection),
//  2. Creating a new inspection with its answers and photos,
//  3. Reassigning an inspection to another vehicle (optimistically
//     locked by its version),
//  4. Deleting an inspection with all of its answers and photos.
package expertiseuc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/core/cerr"
	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
)

// UseCase represents an expertise use case. It holds a database
// connection pool, the questions and inspections repositories (to be
// guided with the DB pool), and the expertise specific settings.
type UseCase struct {
	pool          repo.Pool
	questionsrp   repo.Questions
	inspectionsrp repo.Inspections

	maxPhotos int
	now       func() time.Time
}

// New instantiates an expertise use case.
// Required parameters are passed individually, so caller has to
// provision them and whenever they change, caller will notice and fix
// them due to a compilation error.
// Optional parameters are passed as a series of functional options
// in order to facilitate their validation and flexibility.
func New(
	p repo.Pool, q repo.Questions, i repo.Inspections, opts ...Option,
) (*UseCase, error) {
	uc := &UseCase{pool: p, questionsrp: q, inspectionsrp: i}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	// now, deal with defaults
	if uc.maxPhotos == 0 {
		uc.maxPhotos = model.DefaultMaxPhotos
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	return uc, nil
}

// MaxPhotos returns the inclusive maximum number of photos which are
// accepted for a "yes" answer.
func (uc *UseCase) MaxPhotos() int {
	return uc.maxPhotos
}

// ReadForVehicle use case lists the active questions of the catalog,
// in their canonical order, and attaches the answer which was given for
// each one of them in the latest inspection of the vehicleID vehicle.
// Questions which were not answered (and all questions of a vehicle
// without any inspection) get the default "no issue" previous answer.
// This use case never modifies the database and an unknown vehicle is
// not an error. The catalog and the inspection are read in one
// read-only transaction, so a concurrent Delete is either observed
// completely or not at all.
func (uc *UseCase) ReadForVehicle(
	ctx context.Context, vehicleID string,
) (p *model.Projection, err error) {
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.ReadTx(ctx, func(ctx context.Context, tx repo.Tx) error {
			qs, err := uc.questionsrp.Tx(tx).ListActive(ctx)
			if err != nil {
				return fmt.Errorf("listing active questions: %w", err)
			}
			latest, err := uc.inspectionsrp.Tx(tx).Latest(ctx, vehicleID)
			if err != nil {
				return fmt.Errorf("loading latest inspection: %w", err)
			}
			p = model.Project(vehicleID, qs, latest)
			return nil
		})
	})
	if err != nil {
		p = nil
	}
	return
}

// Create use case validates the answers and stores them as a new
// inspection of the vehicleID vehicle. Validation happens before any
// database access, so an invalid request has no side effect. Storing
// the inspection, its answers, and their photos happens in a single
// transaction; if any answer refers to a missing question, nothing is
// stored and a 422 error is returned. The new inspection id is returned
// on success.
func (uc *UseCase) Create(
	ctx context.Context, vehicleID string, payloads []model.AnswerPayload,
) (uuid.UUID, error) {
	err := model.ValidatePayloads(vehicleID, payloads, uc.maxPhotos)
	if err != nil {
		return uuid.Nil, cerr.BadRequest(err)
	}
	in := &model.Inspection{
		ID:        uuid.New(),
		VehicleID: vehicleID,
		CreatedAt: uc.now().UTC(),
		Version:   0,
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.create(ctx, tx, in, payloads)
		})
	})
	if err != nil {
		var qnf model.QuestionNotFoundError
		if errors.As(err, &qnf) {
			return uuid.Nil, cerr.Unprocessable(qnf)
		}
		return uuid.Nil, err
	}
	log.Info(
		ctx, "inspection created",
		log.UUID("id", in.ID), log.Vehicle(vehicleID),
		slog.Int("answers", len(payloads)),
	)
	return in.ID, nil
}

func (uc *UseCase) create(
	ctx context.Context,
	tx repo.Tx,
	in *model.Inspection,
	payloads []model.AnswerPayload,
) error {
	qq := uc.questionsrp.Tx(tx)
	iq := uc.inspectionsrp.Tx(tx)
	if err := iq.CreateInspection(ctx, in); err != nil {
		return fmt.Errorf("creating inspection: %w", err)
	}
	for i, p := range payloads {
		if _, err := qq.Find(ctx, p.QuestionID); err != nil {
			return fmt.Errorf("finding question: %w", err)
		}
		a := &model.Answer{
			ID:           uuid.New(),
			InspectionID: in.ID,
			QuestionID:   p.QuestionID,
			Value:        p.Value,
			Description:  p.Description,
		}
		if err := iq.CreateAnswer(ctx, a, i); err != nil {
			return fmt.Errorf("creating answer #%d: %w", i, err)
		}
		for j, u := range p.PhotoURLs {
			ph := model.Photo{ID: uuid.New(), AnswerID: a.ID, URL: u}
			if err := iq.CreatePhoto(ctx, &ph, j); err != nil {
				return fmt.Errorf("creating photo #%d of answer #%d: %w", j, i, err)
			}
			a.Photos = append(a.Photos, ph)
		}
		in.Answers = append(in.Answers, *a)
	}
	return nil
}

// Reassign use case moves the id inspection to the vehicleID vehicle.
// The expectedVersion must match the current version of the inspection,
// otherwise, another client has modified it since it was read by this
// caller and a 409 conflict error is returned. A missing inspection
// causes a 404 error. The updated inspection is returned on success.
func (uc *UseCase) Reassign(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	vehicleID string,
) (in *model.Inspection, err error) {
	if err = model.ValidateVehicleID(vehicleID); err != nil {
		return nil, cerr.BadRequest(err)
	}
	err = uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			in, err = uc.inspectionsrp.Tx(tx).Reassign(
				ctx, id, expectedVersion, vehicleID,
			)
			return err
		})
	})
	if err != nil {
		return nil, classify(err)
	}
	log.Info(
		ctx, "inspection reassigned",
		log.UUID("id", id), log.Vehicle(vehicleID),
		slog.Int64("version", in.Version),
	)
	return in, nil
}

// Delete use case removes the id inspection, its answers, and their
// photos in a single transaction. A missing inspection causes a 404
// error.
func (uc *UseCase) Delete(ctx context.Context, id uuid.UUID) error {
	err := uc.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
			return uc.inspectionsrp.Tx(tx).Delete(ctx, id)
		})
	})
	if err != nil {
		return classify(err)
	}
	log.Info(ctx, "inspection deleted", log.UUID("id", id))
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, repo.ErrInspectionNotFound):
		return cerr.NotFound(repo.ErrInspectionNotFound)
	case errors.Is(err, repo.ErrVersionConflict):
		return cerr.Conflict(repo.ErrVersionConflict)
	default:
		return err
	}
}

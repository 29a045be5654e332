// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package inspectionsrp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
	"gorm.io/gorm"
)

type gInspection struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	VehicleID string
	CreatedAt time.Time
	Version   int64
}

func (gi *gInspection) TableName() string {
	return "inspections"
}

func (gi *gInspection) Model() *model.Inspection {
	return &model.Inspection{
		ID:        gi.ID,
		VehicleID: gi.VehicleID,
		CreatedAt: gi.CreatedAt,
		Version:   gi.Version,
	}
}

type gAnswer struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	InspectionID uuid.UUID `gorm:"type:uuid"`
	QuestionID   int64
	Value        bool
	Description  *string
	Position     int
}

func (ga *gAnswer) TableName() string {
	return "answers"
}

func (ga *gAnswer) Model() model.Answer {
	return model.Answer{
		ID:           ga.ID,
		InspectionID: ga.InspectionID,
		QuestionID:   ga.QuestionID,
		Value:        ga.Value,
		Description:  ga.Description,
	}
}

type gPhoto struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	AnswerID uuid.UUID `gorm:"type:uuid"`
	URL      string    `gorm:"column:url"`
	Position int
}

func (gp *gPhoto) TableName() string {
	return "photos"
}

func (gp *gPhoto) Model() model.Photo {
	return model.Photo{
		ID:       gp.ID,
		AnswerID: gp.AnswerID,
		URL:      gp.URL,
	}
}

// Latest queries the most recent inspection of the vehicleID vehicle
// with its answers and photos. Inspections with equal creation times
// are ordered by their ids. A vehicle without inspections causes
// a nil inspection and a nil error.
func Latest[Q postgres.Queryer](
	ctx context.Context, q Q, vehicleID string,
) (*model.Inspection, error) {
	var gis []gInspection
	res := q.GORM(ctx).Where("vehicle_id = ?", vehicleID).Order(
		"created_at DESC, id DESC",
	).Limit(1).Find(&gis)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query inspection: %w", err)
	}
	if len(gis) == 0 {
		return nil, nil
	}
	return load(ctx, q, &gis[0])
}

// Get queries the id inspection with its answers and photos.
// A missing inspection causes repo.ErrInspectionNotFound.
func Get[Q postgres.Queryer](
	ctx context.Context, q Q, id uuid.UUID,
) (*model.Inspection, error) {
	var gis []gInspection
	res := q.GORM(ctx).Where("id = ?", id).Limit(1).Find(&gis)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query inspection: %w", err)
	}
	if len(gis) == 0 {
		return nil, repo.ErrInspectionNotFound
	}
	return load(ctx, q, &gis[0])
}

// load fills the answers and photos of the gi inspection, keeping
// their persisted positions.
func load[Q postgres.Queryer](
	ctx context.Context, q Q, gi *gInspection,
) (*model.Inspection, error) {
	in := gi.Model()
	var gas []gAnswer
	res := q.GORM(ctx).Where("inspection_id = ?", gi.ID).Order(
		"position, id",
	).Find(&gas)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	if len(gas) == 0 {
		return in, nil
	}
	ids := make([]uuid.UUID, 0, len(gas))
	for i := range gas {
		ids = append(ids, gas[i].ID)
	}
	var gps []gPhoto
	res = q.GORM(ctx).Where("answer_id IN ?", ids).Order(
		"answer_id, position, id",
	).Find(&gps)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	photos := make(map[uuid.UUID][]model.Photo, len(gas))
	for i := range gps {
		gp := &gps[i]
		photos[gp.AnswerID] = append(photos[gp.AnswerID], gp.Model())
	}
	in.Answers = make([]model.Answer, 0, len(gas))
	for i := range gas {
		a := gas[i].Model()
		a.Photos = photos[a.ID]
		in.Answers = append(in.Answers, a)
	}
	return in, nil
}

// CreateInspection inserts the in inspection row (ignoring its answers).
func CreateInspection(
	ctx context.Context, tx *postgres.Tx, in *model.Inspection,
) error {
	gi := &gInspection{
		ID:        in.ID,
		VehicleID: in.VehicleID,
		CreatedAt: in.CreatedAt,
		Version:   in.Version,
	}
	if err := tx.GORM(ctx).Create(gi).Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// CreateAnswer inserts the a answer row (ignoring its photos) at the
// given position. A foreign key violation means that the referenced
// question is missing and a unique violation means that the same
// question was answered twice in one inspection.
func CreateAnswer(
	ctx context.Context, tx *postgres.Tx, a *model.Answer, position int,
) error {
	ga := &gAnswer{
		ID:           a.ID,
		InspectionID: a.InspectionID,
		QuestionID:   a.QuestionID,
		Value:        a.Value,
		Description:  a.Description,
		Position:     position,
	}
	err := tx.GORM(ctx).Create(ga).Error
	switch {
	case err == nil:
		return nil
	case postgres.HasCode(err, postgres.ForeignKeyViolation):
		return model.QuestionNotFoundError(a.QuestionID)
	case postgres.HasCode(err, postgres.UniqueViolation):
		return fmt.Errorf("%w %d", model.ErrDuplicateAnswer, a.QuestionID)
	default:
		return fmt.Errorf("insert: %w", err)
	}
}

// CreatePhoto inserts the p photo row at the given position.
func CreatePhoto(
	ctx context.Context, tx *postgres.Tx, p *model.Photo, position int,
) error {
	gp := &gPhoto{
		ID:       p.ID,
		AnswerID: p.AnswerID,
		URL:      p.URL,
		Position: position,
	}
	if err := tx.GORM(ctx).Create(gp).Error; err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// Reassign updates the vehicle id of the id inspection and increments
// its version if its current version equals expectedVersion.
func Reassign(
	ctx context.Context,
	tx *postgres.Tx,
	id uuid.UUID,
	expectedVersion int64,
	vehicleID string,
) (*model.Inspection, error) {
	res := tx.GORM(ctx).Model(&gInspection{}).Where(
		"id = ? AND version = ?", id, expectedVersion,
	).Updates(map[string]any{
		"vehicle_id": vehicleID,
		"version":    gorm.Expr("version + 1"),
	})
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if res.RowsAffected == 0 {
		var n int64
		res = tx.GORM(ctx).Model(&gInspection{}).Where("id = ?", id).Count(&n)
		if err := res.Error; err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
		if n == 0 {
			return nil, repo.ErrInspectionNotFound
		}
		return nil, repo.ErrVersionConflict
	}
	return Get(ctx, tx, id)
}

// Delete removes the photos, answers, and the row of the id inspection
// in this order.
func Delete(ctx context.Context, tx *postgres.Tx, id uuid.UUID) error {
	answerIDs := tx.GORM(ctx).Model(&gAnswer{}).Select("id").Where(
		"inspection_id = ?", id,
	)
	res := tx.GORM(ctx).Where("answer_id IN (?)", answerIDs).Delete(
		&gPhoto{},
	)
	if err := res.Error; err != nil {
		return fmt.Errorf("delete photos: %w", err)
	}
	res = tx.GORM(ctx).Where("inspection_id = ?", id).Delete(&gAnswer{})
	if err := res.Error; err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	res = tx.GORM(ctx).Where("id = ?", id).Delete(&gInspection{})
	if err := res.Error; err != nil {
		return fmt.Errorf("delete inspection: %w", err)
	}
	if res.RowsAffected == 0 {
		return repo.ErrInspectionNotFound
	}
	return nil
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"fmt"

	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Version is the semantic version of the schema which is created by
// the Initializer. It is recorded in the configuration file, so
// a binary refuses to run against a schema of another major version.
var Version = model.SemVer{1, 0, 0}

// Tables contains the DDL statements of the expertise schema. They are
// run by the normal role with search_path set to the expertise schema,
// so the tables are owned by the normal role.
const Tables = `
CREATE TABLE questions (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE TABLE inspections (
    id UUID PRIMARY KEY,
    vehicle_id TEXT NOT NULL CHECK (btrim(vehicle_id) <> ''),
    created_at TIMESTAMPTZ NOT NULL,
    version BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX inspections_latest_idx
    ON inspections (vehicle_id, created_at DESC, id DESC);
CREATE TABLE answers (
    id UUID PRIMARY KEY,
    inspection_id UUID NOT NULL REFERENCES inspections (id),
    question_id BIGINT NOT NULL REFERENCES questions (id),
    value BOOLEAN NOT NULL,
    description TEXT,
    position INTEGER NOT NULL,
    UNIQUE (inspection_id, question_id)
);
CREATE TABLE photos (
    id UUID PRIMARY KEY,
    answer_id UUID NOT NULL REFERENCES answers (id),
    url TEXT NOT NULL CHECK (btrim(url) <> ''),
    position INTEGER NOT NULL
);
CREATE INDEX photos_answer_idx ON photos (answer_id, position);
`

// DevQuestions is the small question catalog which is inserted for
// the development environments. The inactive question helps to check
// that the catalog filtering works.
var DevQuestions = []model.Question{
	{ID: 1, Text: "Is there a problem with the multimedia system?", Active: true},
	{ID: 2, Text: "Is anything missing in the vehicle registration?", Active: true},
	{ID: 3, Text: "Is there a scratch on the body?", Active: true},
	{ID: 4, Text: "Was the odometer tampered with?", Active: false},
}

// ProdQuestions is the standard checklist which is inserted for the
// production environments.
var ProdQuestions = []model.Question{
	{ID: 1, Text: "Is there a problem with the multimedia system?", Active: true},
	{ID: 2, Text: "Is anything missing in the vehicle registration?", Active: true},
	{ID: 3, Text: "Is there a scratch or dent on the body?", Active: true},
	{ID: 4, Text: "Is any of the bumpers damaged?", Active: true},
	{ID: 5, Text: "Is the windshield cracked or chipped?", Active: true},
	{ID: 6, Text: "Are the tires worn out?", Active: true},
	{ID: 7, Text: "Is any of the lights broken?", Active: true},
	{ID: 8, Text: "Is there an oil or coolant leak?", Active: true},
	{ID: 9, Text: "Is there a warning light on the dashboard?", Active: true},
	{ID: 10, Text: "Is the interior stained or torn?", Active: true},
}

// Initializer implements the repo.SchemaInitializer interface by
// wrapping a transaction of the normal role.
type Initializer struct {
	tx *postgres.Tx
}

// NewInitializer unwraps the given repo.Tx instance, expecting to find
// an instance of *postgres.Tx as created by this adapter layer.
// Otherwise, it will panic.
func NewInitializer(tx repo.Tx) *Initializer {
	return &Initializer{tx: tx.(*postgres.Tx)}
}

// InitDevSchema creates the tables and inserts the DevQuestions.
func (i *Initializer) InitDevSchema(ctx context.Context) error {
	return i.init(ctx, DevQuestions)
}

// InitProdSchema creates the tables and inserts the ProdQuestions.
func (i *Initializer) InitProdSchema(ctx context.Context) error {
	return i.init(ctx, ProdQuestions)
}

func (i *Initializer) init(ctx context.Context, qs []model.Question) error {
	if _, err := i.tx.Exec(ctx, Tables); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	if err := InsertQuestions(ctx, i.tx, qs); err != nil {
		return fmt.Errorf("inserting questions: %w", err)
	}
	return nil
}

// InsertQuestions inserts the qs questions with their explicit ids and
// moves the ids sequence after the greatest inserted id.
func InsertQuestions[Q postgres.Queryer](
	ctx context.Context, q Q, qs []model.Question,
) error {
	for _, question := range qs {
		_, err := q.Exec(
			ctx, "INSERT INTO questions (id, text, active) VALUES (?, ?, ?)",
			question.ID, question.Text, question.Active,
		)
		if err != nil {
			return fmt.Errorf("inserting question %d: %w", question.ID, err)
		}
	}
	_, err := q.Exec(ctx, `SELECT setval(
    pg_get_serial_sequence('questions', 'id'),
    (SELECT COALESCE(MAX(id), 0) + 1 FROM questions),
    false)`)
	if err != nil {
		return fmt.Errorf("adjusting questions sequence: %w", err)
	}
	return nil
}

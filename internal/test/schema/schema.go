// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package schema is a database schema verifier which can be used for
// testing purposes. It checks that the expertise tables exist (and
// enforce their constraints) and that the question catalog contains
// the development or production suitable rows.
package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/schemarp"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verifier wraps a database connection which is used for testing.
type Verifier struct {
	c repo.Conn
}

// New instantiates a Verifier struct, wrapping the `c` database
// connection.
func New(c repo.Conn) *Verifier {
	return &Verifier{c}
}

var errRollback = errors.New("rollback the verification tx")

// VerifySchema inserts temporary rows in an uncommitted transaction,
// ensuring that the expected tables, columns, and constraints are
// in place. Failures are reported using the `t` testing argument.
func (v *Verifier) VerifySchema(ctx context.Context, t *testing.T) {
	err := v.c.Tx(ctx, func(ctx context.Context, tx repo.Tx) error {
		stmts := []string{
			"INSERT INTO questions (id, text) VALUES (1000, 'q')",
			`INSERT INTO inspections (id, vehicle_id, created_at, version)
VALUES ('00000000-0000-0000-0000-000000000001', 'V', now(), 0)`,
			`INSERT INTO answers
(id, inspection_id, question_id, value, description, position)
VALUES ('00000000-0000-0000-0000-000000000002',
'00000000-0000-0000-0000-000000000001', 1000, true, NULL, 0)`,
			`INSERT INTO photos (id, answer_id, url, position)
VALUES ('00000000-0000-0000-0000-000000000003',
'00000000-0000-0000-0000-000000000002', 'a.jpg', 0)`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO answers
(id, inspection_id, question_id, value, description, position)
VALUES ('00000000-0000-0000-0000-000000000004',
'00000000-0000-0000-0000-000000000001', 1000, false, NULL, 1)`)
		assert.True(
			t, postgres.HasCode(err, postgres.UniqueViolation),
			"a question must be answered once per inspection: %v", err,
		)
		return errRollback
	})
	assert.ErrorIs(t, err, errRollback)
}

// VerifyDevData checks for presence of the development questions.
func (v *Verifier) VerifyDevData(ctx context.Context, t *testing.T) {
	v.verifyQuestions(ctx, t, schemarp.DevQuestions)
}

// VerifyProdData checks for presence of the production questions.
func (v *Verifier) VerifyProdData(ctx context.Context, t *testing.T) {
	v.verifyQuestions(ctx, t, schemarp.ProdQuestions)
}

func (v *Verifier) verifyQuestions(
	ctx context.Context, t *testing.T, expected []model.Question,
) {
	rows, err := v.c.Query(
		ctx, "SELECT id, text, active FROM questions ORDER BY id",
	)
	require.NoError(t, err)
	defer rows.Close()
	var actual []model.Question
	for rows.Next() {
		var q model.Question
		require.NoError(t, rows.Scan(&q.ID, &q.Text, &q.Active))
		actual = append(actual, q)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, expected, actual)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package questionsrp provides a reification of the repo.Questions
// interface, reading the question catalog from the questions table.
package questionsrp

import (
	"context"

	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Repo represents the question catalog repository.
type Repo struct {
}

// New instantiates a question catalog Repo struct.
func New() *Repo {
	return &Repo{}
}

type connQueryer struct {
	*postgres.Conn
}

// Conn unwraps the given repo.Conn instance, expecting to find an
// instance of *postgres.Conn as created by this adapter layer.
// Otherwise, it will panic.
func (questions *Repo) Conn(c repo.Conn) repo.QuestionsConnQueryer {
	cc := c.(*postgres.Conn)
	return connQueryer{Conn: cc}
}

func (cq connQueryer) ListActive(ctx context.Context) ([]model.Question, error) {
	return ListActive(ctx, cq.Conn)
}

func (cq connQueryer) Find(ctx context.Context, qid int64) (*model.Question, error) {
	return Find(ctx, cq.Conn, qid)
}

type txQueryer struct {
	*postgres.Tx
}

// Tx unwraps the given repo.Tx instance, expecting to find an instance
// of *postgres.Tx as created by this adapter layer.
// Otherwise, it will panic.
func (questions *Repo) Tx(tx repo.Tx) repo.QuestionsTxQueryer {
	tt := tx.(*postgres.Tx)
	return txQueryer{Tx: tt}
}

func (tq txQueryer) ListActive(ctx context.Context) ([]model.Question, error) {
	return ListActive(ctx, tq.Tx)
}

func (tq txQueryer) Find(ctx context.Context, qid int64) (*model.Question, error) {
	return Find(ctx, tq.Tx, qid)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrepo provides in-memory repositories for the use case and
// resource tests. Transactions stage their writes on a copy of the
// committed inspections and record them as a list of changes. On
// success, the changes are applied to the latest committed state under
// the Store lock, so concurrent transactions do not lose each other's
// writes, and rollback semantics can be asserted without a database.
package memrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Store keeps the committed state of the fake repositories.
type Store struct {
	mu          sync.Mutex
	questions   map[int64]model.Question
	inspections []*model.Inspection
}

// New creates a Store with the qs question catalog and no inspections.
func New(qs ...model.Question) *Store {
	st := &Store{questions: make(map[int64]model.Question, len(qs))}
	for _, q := range qs {
		st.questions[q.ID] = q
	}
	return st
}

// Snapshot returns a deep copy of the committed inspections.
func (st *Store) Snapshot() []*model.Inspection {
	st.mu.Lock()
	defer st.mu.Unlock()
	return cloneAll(st.inspections)
}

// Count returns the number of committed inspections.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.inspections)
}

func cloneAll(ins []*model.Inspection) []*model.Inspection {
	out := make([]*model.Inspection, 0, len(ins))
	for _, in := range ins {
		out = append(out, clone(in))
	}
	return out
}

func clone(in *model.Inspection) *model.Inspection {
	c := *in
	c.Answers = make([]model.Answer, 0, len(in.Answers))
	for _, a := range in.Answers {
		a.Photos = append([]model.Photo(nil), a.Photos...)
		c.Answers = append(c.Answers, a)
	}
	return &c
}

// Pool returns a repo.Pool whose connections work on st.
func (st *Store) Pool() repo.Pool {
	return &memPool{st: st}
}

// Add commits in directly, bypassing the transactions.
func (st *Store) Add(in *model.Inspection) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.inspections = append(st.inspections, clone(in))
}

type memPool struct {
	st *Store
}

func (p *memPool) Conn(ctx context.Context, h repo.ConnHandler) error {
	return h(ctx, &memConn{st: p.st})
}

func (p *memPool) Close() error {
	return nil
}

// ErrRawSQL is returned by Exec and Query methods.
var ErrRawSQL = errors.New("raw sql is not supported in memory")

type memConn struct {
	st *Store
}

func (c *memConn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (c *memConn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (c *memConn) IsConn() {
}

// Tx stages all writes on a copy of the committed inspections and
// applies them to the committed state only if h succeeds. A change
// which is invalidated by a concurrent commit fails the transaction.
func (c *memConn) Tx(ctx context.Context, h repo.TxHandler) error {
	tx := &memTx{st: c.st, staged: c.st.Snapshot()}
	if err := h(ctx, tx); err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	if err := c.st.apply(tx.changes); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadTx runs h on a snapshot of the committed inspections and
// discards its changes.
func (c *memConn) ReadTx(ctx context.Context, h repo.TxHandler) error {
	tx := &memTx{st: c.st, staged: c.st.Snapshot()}
	if err := h(ctx, tx); err != nil {
		return fmt.Errorf("handler: %w", err)
	}
	if len(tx.changes) != 0 {
		return errors.New("read-only transaction has writes")
	}
	return nil
}

// change modifies the ins inspections and returns the modified slice.
type change func(ins []*model.Inspection) ([]*model.Inspection, error)

func (st *Store) apply(changes []change) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	ins := cloneAll(st.inspections)
	for _, ch := range changes {
		var err error
		if ins, err = ch(ins); err != nil {
			return err
		}
	}
	st.inspections = ins
	return nil
}

type memTx struct {
	st      *Store
	staged  []*model.Inspection
	changes []change
}

// stage applies ch to the staged inspections and records it for the
// commit time.
func (tx *memTx) stage(ch change) error {
	ins, err := ch(tx.staged)
	if err != nil {
		return err
	}
	tx.staged = ins
	tx.changes = append(tx.changes, ch)
	return nil
}

func (tx *memTx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, ErrRawSQL
}

func (tx *memTx) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *memTx) IsTx() {
}

// Questions implements repo.Questions over the Store catalog.
type Questions struct{}

func (Questions) Conn(c repo.Conn) repo.QuestionsConnQueryer {
	return questionsQueryer{st: c.(*memConn).st}
}

func (Questions) Tx(tx repo.Tx) repo.QuestionsTxQueryer {
	return questionsQueryer{st: tx.(*memTx).st}
}

type questionsQueryer struct {
	st *Store
}

func (q questionsQueryer) ListActive(context.Context) ([]model.Question, error) {
	q.st.mu.Lock()
	defer q.st.mu.Unlock()
	var qs []model.Question
	for _, question := range q.st.questions {
		if question.Active {
			qs = append(qs, question)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, nil
}

func (q questionsQueryer) Find(_ context.Context, qid int64) (*model.Question, error) {
	q.st.mu.Lock()
	defer q.st.mu.Unlock()
	question, ok := q.st.questions[qid]
	if !ok {
		return nil, model.QuestionNotFoundError(qid)
	}
	return &question, nil
}

// Inspections implements repo.Inspections over the Store inspections.
type Inspections struct{}

func (Inspections) Conn(c repo.Conn) repo.InspectionsConnQueryer {
	return &inspectionsQueryer{
		view: func() []*model.Inspection {
			return c.(*memConn).st.Snapshot()
		},
	}
}

func (Inspections) Tx(tx repo.Tx) repo.InspectionsTxQueryer {
	ft := tx.(*memTx)
	return &inspectionsQueryer{
		tx: ft,
		view: func() []*model.Inspection {
			return ft.staged
		},
	}
}

type inspectionsQueryer struct {
	tx   *memTx
	view func() []*model.Inspection
}

func (q *inspectionsQueryer) Latest(
	_ context.Context, vehicleID string,
) (*model.Inspection, error) {
	var latest *model.Inspection
	for _, in := range q.view() {
		if in.VehicleID != vehicleID {
			continue
		}
		if latest == nil || newer(in, latest) {
			latest = in
		}
	}
	if latest == nil {
		return nil, nil
	}
	return clone(latest), nil
}

func newer(a, b *model.Inspection) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

func (q *inspectionsQueryer) Get(
	_ context.Context, id uuid.UUID,
) (*model.Inspection, error) {
	for _, in := range q.view() {
		if in.ID == id {
			return clone(in), nil
		}
	}
	return nil, repo.ErrInspectionNotFound
}

func (q *inspectionsQueryer) CreateInspection(
	_ context.Context, in *model.Inspection,
) error {
	c := clone(in)
	c.Answers = nil
	return q.tx.stage(func(ins []*model.Inspection) ([]*model.Inspection, error) {
		return append(ins, clone(c)), nil
	})
}

func (q *inspectionsQueryer) CreateAnswer(
	_ context.Context, a *model.Answer, position int,
) error {
	c := *a
	c.Photos = nil
	return q.tx.stage(func(ins []*model.Inspection) ([]*model.Inspection, error) {
		for _, in := range ins {
			if in.ID != c.InspectionID {
				continue
			}
			if position != len(in.Answers) {
				return nil, fmt.Errorf("unexpected answer position %d", position)
			}
			in.Answers = append(in.Answers, c)
			return ins, nil
		}
		return nil, fmt.Errorf("inspection %s is not staged", c.InspectionID)
	})
}

func (q *inspectionsQueryer) CreatePhoto(
	_ context.Context, p *model.Photo, position int,
) error {
	c := *p
	return q.tx.stage(func(ins []*model.Inspection) ([]*model.Inspection, error) {
		for _, in := range ins {
			for i := range in.Answers {
				a := &in.Answers[i]
				if a.ID != c.AnswerID {
					continue
				}
				if position != len(a.Photos) {
					return nil, fmt.Errorf("unexpected photo position %d", position)
				}
				a.Photos = append(a.Photos, c)
				return ins, nil
			}
		}
		return nil, fmt.Errorf("answer %s is not staged", c.AnswerID)
	})
}

func (q *inspectionsQueryer) Reassign(
	_ context.Context, id uuid.UUID, expectedVersion int64, vehicleID string,
) (updated *model.Inspection, err error) {
	err = q.tx.stage(func(ins []*model.Inspection) ([]*model.Inspection, error) {
		for _, in := range ins {
			if in.ID != id {
				continue
			}
			if in.Version != expectedVersion {
				return nil, repo.ErrVersionConflict
			}
			in.VehicleID = vehicleID
			in.Version++
			updated = clone(in)
			return ins, nil
		}
		return nil, repo.ErrInspectionNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (q *inspectionsQueryer) Delete(_ context.Context, id uuid.UUID) error {
	return q.tx.stage(func(ins []*model.Inspection) ([]*model.Inspection, error) {
		for i, in := range ins {
			if in.ID == id {
				return append(ins[:i:i], ins[i+1:]...), nil
			}
		}
		return nil, repo.ErrInspectionNotFound
	})
}

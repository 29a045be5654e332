// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/expertise/pkg/core/model"
)

// QuestionsQueryer lists the read-only question catalog.
type QuestionsQueryer interface {
	// ListActive returns the active questions ordered by their id.
	ListActive(ctx context.Context) ([]model.Question, error)

	// Find returns the qid question, whether it is active or not.
	// A missing question is reported by a model.QuestionNotFoundError
	// (which may be wrapped).
	Find(ctx context.Context, qid int64) (*model.Question, error)
}

type QuestionsConnQueryer interface {
	QuestionsQueryer
}

type QuestionsTxQueryer interface {
	QuestionsQueryer
}

// Questions is the question catalog repository. Its Conn and Tx methods
// bind the repository to a connection or transaction respectively.
type Questions interface {
	Conn(Conn) QuestionsConnQueryer
	Tx(Tx) QuestionsTxQueryer
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package questionsrp

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/model"
	"gorm.io/gorm"
)

type gQuestion struct {
	ID     int64 `gorm:"primaryKey;column:id"`
	Text   string
	Active bool
}

func (gq *gQuestion) TableName() string {
	return "questions"
}

func (gq *gQuestion) Model() model.Question {
	return model.Question{
		ID:     gq.ID,
		Text:   gq.Text,
		Active: gq.Active,
	}
}

// ListActive queries the active questions, ordered by their ids.
func ListActive[Q postgres.Queryer](
	ctx context.Context, q Q,
) ([]model.Question, error) {
	var gqs []gQuestion
	res := q.GORM(ctx).Where("active").Order("id").Find(&gqs)
	if err := res.Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	qs := make([]model.Question, 0, len(gqs))
	for i := range gqs {
		qs = append(qs, gqs[i].Model())
	}
	return qs, nil
}

// Find queries the qid question. A missing question is reported by
// a model.QuestionNotFoundError.
func Find[Q postgres.Queryer](
	ctx context.Context, q Q, qid int64,
) (*model.Question, error) {
	var gq gQuestion
	res := q.GORM(ctx).Take(&gq, qid)
	if err := res.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.QuestionNotFoundError(qid)
		}
		return nil, fmt.Errorf("query: %w", err)
	}
	question := gq.Model()
	return &question, nil
}

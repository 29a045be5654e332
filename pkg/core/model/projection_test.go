// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

var catalog = []model.Question{
	{ID: 1, Text: "Multimedia issue?", Active: true},
	{ID: 2, Text: "Registration issue?", Active: true},
}

func TestProjectWithoutHistory(t *testing.T) {
	p := model.Project("CAR123", catalog, nil)
	assert.Equal(t, &model.Projection{
		VehicleID: "CAR123",
		Items: []model.QuestionItem{
			{QuestionID: 1, Text: "Multimedia issue?", Previous: model.Previous{PhotoURLs: []string{}}},
			{QuestionID: 2, Text: "Registration issue?", Previous: model.Previous{PhotoURLs: []string{}}},
		},
	}, p)
}

func TestProjectEmptyCatalog(t *testing.T) {
	p := model.Project("CAR123", nil, nil)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestProjectMatchesByQuestionID(t *testing.T) {
	desc := "issue"
	in := &model.Inspection{
		ID:        uuid.New(),
		VehicleID: "CAR123",
		Answers: []model.Answer{
			{QuestionID: 99, Value: true}, // not in catalog
			{
				QuestionID:  1,
				Value:       true,
				Description: &desc,
				Photos:      []model.Photo{{URL: "b.jpg"}, {URL: "a.jpg"}},
			},
		},
	}
	p := model.Project("CAR123", catalog, in)
	assert.Len(t, p.Items, 2)
	assert.Equal(t, model.Previous{
		AnsweredYes: true, Description: &desc,
		PhotoURLs: []string{"b.jpg", "a.jpg"},
	}, p.Items[0].Previous)
	assert.Equal(t, model.Previous{PhotoURLs: []string{}}, p.Items[1].Previous)
}

func TestAnswerForPicksFirstInSubmissionOrder(t *testing.T) {
	in := &model.Inspection{Answers: []model.Answer{
		{QuestionID: 1, Value: true},
		{QuestionID: 1, Value: false},
	}}
	a, ok := in.AnswerFor(1)
	assert.True(t, ok)
	assert.True(t, a.Value)
	_, ok = in.AnswerFor(2)
	assert.False(t, ok)
	var none *model.Inspection
	_, ok = none.AnswerFor(1)
	assert.False(t, ok)
}

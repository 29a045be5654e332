// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/momeni/expertise/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urls(n int) []string {
	u := make([]string, n)
	for i := range u {
		u[i] = strings.Repeat("p", i+1) + ".jpg"
	}
	return u
}

func TestPhotoCountRule(t *testing.T) {
	for _, tc := range []struct {
		name    string
		value   bool
		photos  []string
		wantErr error
		msg     string
	}{
		{name: "yes nil photos", value: true, photos: nil, wantErr: model.ErrNoPhotos, msg: "at least 1 photo required when answering yes"},
		{name: "yes no photos", value: true, photos: urls(0), wantErr: model.ErrNoPhotos, msg: "at least 1 photo required when answering yes"},
		{name: "yes one photo", value: true, photos: urls(1)},
		{name: "yes two photos", value: true, photos: urls(2)},
		{name: "yes three photos", value: true, photos: urls(3)},
		{name: "yes four photos", value: true, photos: urls(4), wantErr: model.ErrTooManyPhotos, msg: "at most 3 photos allowed"},
		{name: "no without photos", value: false},
		{name: "no with many photos", value: false, photos: urls(5)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := model.AnswerPayload{
				QuestionID: 7, Value: tc.value, PhotoURLs: tc.photos,
			}
			err := p.Validate(model.DefaultMaxPhotos)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), tc.msg)
			var pce *model.PhotoCountError
			require.True(t, errors.As(err, &pce))
			assert.Equal(t, int64(7), pce.QuestionID)
		})
	}
}

func TestValidatePayloads(t *testing.T) {
	ok := model.AnswerPayload{QuestionID: 1, Value: true, PhotoURLs: urls(1)}
	for _, tc := range []struct {
		name     string
		vehicle  string
		payloads []model.AnswerPayload
		wantErr  error
	}{
		{name: "valid", vehicle: "CAR123", payloads: []model.AnswerPayload{ok}},
		{name: "blank vehicle", vehicle: "  ", payloads: []model.AnswerPayload{ok}, wantErr: model.ErrBlankVehicleID},
		{name: "no answers", vehicle: "CAR123", wantErr: model.ErrNoAnswers},
		{
			name:    "duplicate question",
			vehicle: "CAR123",
			payloads: []model.AnswerPayload{
				ok, {QuestionID: 1, Value: false},
			},
			wantErr: model.ErrDuplicateAnswer,
		},
		{
			name:    "blank url on a no answer",
			vehicle: "CAR123",
			payloads: []model.AnswerPayload{
				{QuestionID: 2, Value: false, PhotoURLs: []string{" "}},
			},
			wantErr: model.ErrBlankPhotoURL,
		},
		{
			name:    "violation after a valid answer",
			vehicle: "CAR123",
			payloads: []model.AnswerPayload{
				ok, {QuestionID: 2, Value: true, PhotoURLs: urls(4)},
			},
			wantErr: model.ErrTooManyPhotos,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := model.ValidatePayloads(
				tc.vehicle, tc.payloads, model.DefaultMaxPhotos,
			)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidatePayloadsCustomMax(t *testing.T) {
	p := []model.AnswerPayload{{QuestionID: 3, Value: true, PhotoURLs: urls(5)}}
	assert.NoError(t, model.ValidatePayloads("V", p, 5))
	err := model.ValidatePayloads("V", p, 4)
	assert.ErrorIs(t, err, model.ErrTooManyPhotos)
	assert.EqualError(t, err, "question 3: at most 4 photos allowed")
}

func TestQuestionNotFoundError(t *testing.T) {
	var err error = model.QuestionNotFoundError(42)
	assert.EqualError(t, err, "question not found: 42")
}

func TestQuestionNotFoundErrorIs(t *testing.T) {
	err := fmt.Errorf("create: %w", model.QuestionNotFoundError(9))
	assert.ErrorIs(t, err, model.ErrQuestionNotFound)
	var qnf model.QuestionNotFoundError
	require.ErrorAs(t, err, &qnf)
	assert.Equal(t, model.QuestionNotFoundError(9), qnf)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxPhotos is the inclusive upper bound on the number of photos
// which may be attached to a "yes" answer, unless configured otherwise.
const DefaultMaxPhotos = 3

// MinPhotosForYes is the inclusive lower bound on the number of photos
// of a "yes" answer.
const MinPhotosForYes = 1

// These errors describe the payload validation failures. They are
// returned after wrapping, so errors.Is must be used for detecting them.
var (
	ErrBlankVehicleID   = errors.New("vehicle id must not be blank")
	ErrNoAnswers        = errors.New("at least one answer is required")
	ErrBlankPhotoURL    = errors.New("photo url must not be blank")
	ErrDuplicateAnswer  = errors.New("duplicate answer for question")
	ErrNoPhotos         = errors.New("not enough photos")
	ErrTooManyPhotos    = errors.New("too many photos")
	ErrQuestionNotFound = errors.New("question not found")
)

// AnswerPayload is the caller provided answer of one question, as it is
// received by the create use case. The PhotoURLs order is preserved.
type AnswerPayload struct {
	QuestionID  int64
	Value       bool
	Description *string
	PhotoURLs   []string
}

// PhotoCountError reports that a "yes" answer has too few or too many
// photos. It wraps ErrNoPhotos or ErrTooManyPhotos, so both rules can
// be told apart with errors.Is while the message stays human-readable.
type PhotoCountError struct {
	QuestionID int64
	Count      int // number of supplied photos
	Max        int // inclusive maximum which was in effect
}

// Error implements the error interface.
func (e *PhotoCountError) Error() string {
	if e.Count < MinPhotosForYes {
		return fmt.Sprintf(
			"question %d: at least %d photo required when answering yes",
			e.QuestionID, MinPhotosForYes,
		)
	}
	return fmt.Sprintf(
		"question %d: at most %d photos allowed", e.QuestionID, e.Max,
	)
}

// Unwrap returns the sentinel error of the violated boundary.
func (e *PhotoCountError) Unwrap() error {
	if e.Count < MinPhotosForYes {
		return ErrNoPhotos
	}
	return ErrTooManyPhotos
}

// Validate checks the photo-count rule of a single payload. Answers
// with a false value have no photo constraint at all.
func (p AnswerPayload) Validate(maxPhotos int) error {
	for i, u := range p.PhotoURLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf(
				"question %d, photo #%d: %w", p.QuestionID, i, ErrBlankPhotoURL,
			)
		}
	}
	if !p.Value {
		return nil
	}
	if n := len(p.PhotoURLs); n < MinPhotosForYes || n > maxPhotos {
		return &PhotoCountError{
			QuestionID: p.QuestionID, Count: n, Max: maxPhotos,
		}
	}
	return nil
}

// ValidatePayloads validates a complete create request before anything
// is persisted. The first violation is returned, so the whole request
// can be rejected without side effects.
func ValidatePayloads(
	vehicleID string, payloads []AnswerPayload, maxPhotos int,
) error {
	if err := ValidateVehicleID(vehicleID); err != nil {
		return err
	}
	if len(payloads) == 0 {
		return ErrNoAnswers
	}
	seen := make(map[int64]struct{}, len(payloads))
	for _, p := range payloads {
		if _, dup := seen[p.QuestionID]; dup {
			return fmt.Errorf("%w %d", ErrDuplicateAnswer, p.QuestionID)
		}
		seen[p.QuestionID] = struct{}{}
		if err := p.Validate(maxPhotos); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVehicleID rejects a blank (or whitespace only) vehicle id.
func ValidateVehicleID(vehicleID string) error {
	if strings.TrimSpace(vehicleID) == "" {
		return ErrBlankVehicleID
	}
	return nil
}

// QuestionNotFoundError indicates that an answer refers to a question
// id which is missing from the catalog. It is detected while the create
// transaction is running, hence, the transaction must be rolled back.
type QuestionNotFoundError int64

// Error implements the error interface.
func (e QuestionNotFoundError) Error() string {
	return fmt.Sprintf("question not found: %d", int64(e))
}

// Is makes errors.Is(err, ErrQuestionNotFound) match all ids.
func (e QuestionNotFoundError) Is(target error) bool {
	return target == ErrQuestionNotFound
}

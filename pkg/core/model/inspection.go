// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// Inspection is one completed checklist submission for a vehicle at
// a point in time. It is created once and its Answers are never
// mutated afterwards. The Version field is an optimistic concurrency
// counter which is incremented by every update of the inspection row
// itself (e.g., reassigning it to another vehicle).
type Inspection struct {
	ID        uuid.UUID
	VehicleID string
	CreatedAt time.Time
	Version   int64
	Answers   []Answer // in submission order
}

// Answer is the response of a single question within an Inspection.
type Answer struct {
	ID           uuid.UUID
	InspectionID uuid.UUID
	QuestionID   int64
	Value        bool    // true means "yes, there is an issue"
	Description  *string // optional free text, nil if not given
	Photos       []Photo // in submission order
}

// Photo is an evidence image URL which is attached to an Answer.
// URLs are opaque strings; uploading and storage are out of scope.
type Photo struct {
	ID       uuid.UUID
	AnswerID uuid.UUID
	URL      string
}

// AnswerFor looks up the answer of the qid question in the inspection.
// The second return value reports if such an answer exists, so callers
// have to deal with the missing answer branch explicitly. If several
// answers exist for the same question (which the storage layer forbids
// with a unique constraint), the first one in submission order wins.
func (in *Inspection) AnswerFor(qid int64) (*Answer, bool) {
	if in == nil {
		return nil, false
	}
	for i := range in.Answers {
		if in.Answers[i].QuestionID == qid {
			return &in.Answers[i], true
		}
	}
	return nil, false
}

// PhotoURLs returns the URLs of the answer photos in their submission
// order. An empty (non-nil) slice is returned if there is no photo.
func (a *Answer) PhotoURLs() []string {
	urls := make([]string, 0, len(a.Photos))
	for _, p := range a.Photos {
		urls = append(urls, p.URL)
	}
	return urls
}

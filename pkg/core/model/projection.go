// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// Projection is the merged view of the active question catalog with
// the answers of the most recent inspection of a vehicle. It is used
// in order to pre-fill the next inspection form.
type Projection struct {
	VehicleID string         `json:"vehicleId"`
	Items     []QuestionItem `json:"items"`
}

// QuestionItem is one row of a Projection, in catalog order.
type QuestionItem struct {
	QuestionID int64    `json:"questionId"`
	Text       string   `json:"text"`
	Previous   Previous `json:"previous"`
}

// Previous holds the prior answer of a question. A missing prior answer
// is represented by its zero-like default (false, nil, empty list) which
// is indistinguishable from an explicit "no" without description.
type Previous struct {
	AnsweredYes bool     `json:"answeredYes"`
	Description *string  `json:"description"`
	PhotoURLs   []string `json:"photoUrls"`
}

// Project builds the projection of the questions catalog (which must be
// ordered already) over the latest inspection. The latest argument may
// be nil if the vehicle has no inspection yet. Questions are matched by
// their identity, never by their text.
func Project(
	vehicleID string, questions []Question, latest *Inspection,
) *Projection {
	p := &Projection{
		VehicleID: vehicleID,
		Items:     make([]QuestionItem, 0, len(questions)),
	}
	for _, q := range questions {
		item := QuestionItem{
			QuestionID: q.ID,
			Text:       q.Text,
			Previous:   Previous{PhotoURLs: []string{}},
		}
		if a, ok := latest.AnswerFor(q.ID); ok {
			item.Previous = Previous{
				AnsweredYes: a.Value,
				Description: a.Description,
				PhotoURLs:   a.PhotoURLs(),
			}
		}
		p.Items = append(p.Items, item)
	}
	return p
}

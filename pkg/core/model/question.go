// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model defines the inner most layer of the Clean Architecture
// containing the business-level models, also called entities or domain.
// This layer may not depend on outter layers, while all other layers
// may depend on it.
//
// The expertise domain revolves around an Inspection of a vehicle which
// owns a series of Answer items (one per catalog Question) and each
// Answer owns its Photo items. Ownership is explicit: deleting an
// Inspection removes its Answers and their Photos too.
package model

// Question is an immutable entry of the checklist catalog.
// Questions are seeded by the database initialization commands and
// are only read by the use cases. The canonical display order of the
// catalog is ascending ID.
type Question struct {
	ID     int64  // stable identifier, also the display order
	Text   string // prompt which is shown to the inspector
	Active bool   // inactive questions are hidden from new forms
}

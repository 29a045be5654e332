// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package expertiseuc

import (
	"errors"
	"fmt"
	"time"

	"github.com/momeni/expertise/pkg/core/model"
)

// Option is a functional option for the expertise use case.
type Option func(uc *UseCase) error

// WithMaxPhotos option configures an expertise UseCase instance in
// order to accept at most n photos for each "yes" answer. The n must
// not be less than model.MinPhotosForYes, so a "yes" answer remains
// satisfiable. This option may be passed to the New() function.
func WithMaxPhotos(n int) Option {
	return func(uc *UseCase) error {
		if n < model.MinPhotosForYes {
			return fmt.Errorf(
				"max photos (%d) is less than %d", n, model.MinPhotosForYes,
			)
		}
		if uc.maxPhotos != 0 {
			return errors.New("max photos is already configured")
		}
		uc.maxPhotos = n
		return nil
	}
}

// WithClock option replaces the time.Now function which is used for
// stamping the created inspections.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		if uc.now != nil {
			return errors.New("clock is already configured")
		}
		uc.now = now
		return nil
	}
}

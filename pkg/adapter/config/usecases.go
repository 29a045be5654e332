// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"

	"github.com/momeni/expertise/pkg/adapter/config/settings"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/inspectionsrp"
	"github.com/momeni/expertise/pkg/adapter/db/postgres/questionsrp"
	"github.com/momeni/expertise/pkg/core/model"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/momeni/expertise/pkg/core/usecase/expertiseuc"
)

// Usecases contains the configuration settings of all use cases.
type Usecases struct {
	Expertise Expertise
}

// ValidateAndNormalize verifies the settings of all use cases.
func (u *Usecases) ValidateAndNormalize() error {
	if err := u.Expertise.ValidateAndNormalize(); err != nil {
		return fmt.Errorf("expertise: %w", err)
	}
	return nil
}

// Expertise contains the expertise use case settings.
// The MaxPhotos is optional and is checked against its optional
// MinMaxPhotos and MaxMaxPhotos boundaries.
type Expertise struct {
	MaxPhotos    *int `yaml:"max-photos,omitempty"`
	MinMaxPhotos *int `yaml:"max-photos-minimum,omitempty"`
	MaxMaxPhotos *int `yaml:"max-photos-maximum,omitempty"`
}

// ValidateAndNormalize verifies that MaxPhotos is in its range and that
// at least one photo can be attached to a "yes" answer.
func (e *Expertise) ValidateAndNormalize() error {
	if err := settings.VerifyRange(
		&e.MaxPhotos, e.MinMaxPhotos, e.MaxMaxPhotos,
	); err != nil {
		return fmt.Errorf(
			"VerifyRange(max photos=%v, minb=%v, maxb=%v): %w",
			err.Value, e.MinMaxPhotos, e.MaxMaxPhotos, err,
		)
	}
	if e.MaxPhotos != nil && *e.MaxPhotos < model.MinPhotosForYes {
		return fmt.Errorf(
			"max photos must be at least %d", model.MinPhotosForYes,
		)
	}
	return nil
}

// NewUseCase instantiates the expertise use case with the relevant
// repositories. The p pool is kept by the use case, so it may acquire
// connections and transactions on demand.
func (e Expertise) NewUseCase(p repo.Pool) (*expertiseuc.UseCase, error) {
	var opts []expertiseuc.Option
	if e.MaxPhotos != nil {
		opts = append(opts, expertiseuc.WithMaxPhotos(*e.MaxPhotos))
	}
	return expertiseuc.New(p, questionsrp.New(), inspectionsrp.New(), opts...)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vers parses the versions section of configuration files.
// Versions are read before the other settings, so an unsupported file
// format or database schema can be reported clearly instead of being
// hidden behind a decoding error.
package vers

import (
	"fmt"

	"github.com/momeni/expertise/pkg/core/model"
	"gopkg.in/yaml.v3"
)

// Config may be inlined in a configuration struct in order to hold
// the configuration file and database schema versions.
type Config struct {
	Versions Versions `yaml:"versions"`
}

// Versions contains the configuration file and database schema versions.
type Versions struct {
	Database model.SemVer `yaml:"database"`
	Config   model.SemVer `yaml:"config"`
}

// Load parses the versions section of data, ignoring other sections.
func Load(data []byte) (*Config, error) {
	vc := &Config{}
	if err := yaml.Unmarshal(data, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// Validate returns an error if the stored config version cannot be
// read by the config reader of the cfgVer version, or the database
// schema version cannot be used by the dbVer schema version.
func (vc *Config) Validate(cfgVer, dbVer model.SemVer) error {
	v := vc.Versions
	if !cfgVer.Supports(v.Config) {
		return fmt.Errorf(
			"unsupported config version %s, expecting %s",
			v.Config, cfgVer,
		)
	}
	if !dbVer.Supports(v.Database) {
		return fmt.Errorf(
			"unsupported database schema version %s, expecting %s",
			v.Database, dbVer,
		)
	}
	return nil
}

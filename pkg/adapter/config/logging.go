// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/momeni/expertise/pkg/core/log"
)

// Logging contains the structured logging settings.
type Logging struct {
	Format string `yaml:"format,omitempty"` // text (default) or json
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, or error
}

// Validate checks the logging format and level without installing
// a logger.
func (l Logging) Validate() error {
	switch l.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", l.Format)
	}
	if l.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
			return fmt.Errorf("parsing log level %q: %w", l.Level, err)
		}
	}
	return nil
}

// Setup installs the process-wide logger which writes to w.
func (l Logging) Setup(w io.Writer) error {
	return log.Setup(w, l.Format, l.Level)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a released semantic version as major, minor, and patch
// components. It versions the configuration file format and the
// database schema, so a binary can refuse files or databases which it
// cannot interpret.
type SemVer [3]uint

// UnmarshalText parses a dot-separated version like 1.2.3 into sv.
// Missing minor or patch components are taken as zero. In case of
// errors, sv is left unchanged.
func (sv *SemVer) UnmarshalText(text []byte) error {
	p := strings.Split(string(text), ".")
	if len(p) > 3 {
		return fmt.Errorf("the %q has too many components", text)
	}
	var v SemVer
	for i, s := range p {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("the %q component is not numeric", s)
		}
		v[i] = uint(n)
	}
	*sv = v
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (sv SemVer) MarshalText() ([]byte, error) {
	return []byte(sv.String()), nil
}

// String returns sv formatted as major.minor.patch.
func (sv SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", sv[0], sv[1], sv[2])
}

// Supports reports if a reader of sv version can interpret the other
// version. The major components must be equal and other may not be
// newer than sv in its minor component. Patch components are ignored.
func (sv SemVer) Supports(other SemVer) bool {
	return sv[0] == other[0] && other[1] <= sv[1]
}

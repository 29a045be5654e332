// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

// Role is a string specifying a database connection role. Each role
// has a set of granted privileges which indicates which operations
// may be performed after using it for connecting to a database.
type Role string

// These constants specify the expected database roles. The AdminRole
// must exist beforehand and it must be able to create schema and roles
// because the database initialization use case creates the NormalRole
// and grants it the privileges on the expertise schema.
// The passwords of these roles are kept in the pass-dir of the config.
const (
	AdminRole  Role = "admin"
	NormalRole Role = "exweb"
)

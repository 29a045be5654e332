// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// SchemaTxQueryer contains the administrative operations which are
// required for preparing an empty database schema and its role.
// All schema and role names are trusted strings which are provided by
// the application itself (never by end users).
type SchemaTxQueryer interface {
	// DropIfExists drops the schema with all its contents (if any).
	DropIfExists(ctx context.Context, schema string) error

	// CreateSchema creates the schema which must not exist.
	CreateSchema(ctx context.Context, schema string) error

	// CreateRoleIfNotExists creates a login role without password.
	CreateRoleIfNotExists(ctx context.Context, role Role) error

	// GrantPrivileges grants all privileges on schema to role.
	GrantPrivileges(ctx context.Context, schema string, role Role) error

	// SetSearchPath makes schema the default search_path of role.
	SetSearchPath(ctx context.Context, schema string, role Role) error

	// ChangePasswords sets passwords[i] for roles[i] without sending
	// the plaintext passwords to the DBMS.
	ChangePasswords(
		ctx context.Context, roles []Role, passwords []string,
	) error
}

// Schema is the schema management repository.
type Schema interface {
	Tx(Tx) SchemaTxQueryer
}

// SchemaInitializer creates the tables of the expertise schema and
// fills the question catalog. It wraps a transaction of the normal
// role, so the created tables are owned by that role.
type SchemaInitializer interface {
	// InitDevSchema creates tables and a small sample catalog.
	InitDevSchema(ctx context.Context) error

	// InitProdSchema creates tables and the standard checklist.
	InitProdSchema(ctx context.Context) error
}

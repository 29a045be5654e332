// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemarp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/momeni/expertise/pkg/core/scram"
)

// PasswordHashIterations is the PBKDF2 iterations count which is used
// for hashing the role passwords, as recommended by RFC 7677.
const PasswordHashIterations = 15000

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func roleIdent(roleSuffix, role repo.Role) string {
	return ident(string(role + roleSuffix))
}

// DropIfExists drops the `schema` schema with all of its tables
// (cascading) if it exists. Otherwise, it causes no change.
//
// Caller is responsible to pass a trusted schema name string.
func DropIfExists[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident(schema)+" CASCADE")
	return err
}

// CreateSchema tries to create the `schema` schema.
// There must be no other schema with the `schema` name, otherwise,
// this operation will fail.
//
// Caller is responsible to pass a trusted schema name string.
func CreateSchema[Q postgres.Queryer](
	ctx context.Context, q Q, schema string,
) error {
	_, err := q.Exec(ctx, "CREATE SCHEMA "+ident(schema))
	return err
}

// CreateRoleIfNotExists creates the `role` role if it does not
// exist right now. Although the login option is enabled for the
// created role, but no specific password will be set for it.
// The ChangePasswords method may be used for setting a password.
//
// The `role` role name is suffixed by `roleSuffix` if it is not empty.
func CreateRoleIfNotExists[Q postgres.Queryer](
	ctx context.Context, q Q, roleSuffix repo.Role, role repo.Role,
) error {
	rows, err := q.Query(
		ctx, "SELECT 1 FROM pg_roles WHERE rolname=?",
		string(role+roleSuffix),
	)
	if err != nil {
		return fmt.Errorf("querying pg_roles: %w", err)
	}
	exists := rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pg_roles: %w", err)
	}
	if exists {
		return nil
	}
	_, err = q.Exec(ctx, "CREATE ROLE "+roleIdent(roleSuffix, role)+" WITH LOGIN")
	return err
}

// GrantPrivileges grants ALL privileges on the `schema` schema
// to the `role` role, so it may create or access tables in that schema
// and run relevant queries.
func GrantPrivileges[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"GRANT ALL PRIVILEGES ON SCHEMA %s TO %s",
		ident(schema), roleIdent(roleSuffix, role),
	))
	return err
}

// SetSearchPath alters the given database role and sets its default
// search_path to the given schema name alone.
func SetSearchPath[Q postgres.Queryer](
	ctx context.Context,
	q Q,
	roleSuffix repo.Role,
	schema string,
	role repo.Role,
) error {
	_, err := q.Exec(ctx, fmt.Sprintf(
		"ALTER ROLE %s SET search_path TO %s",
		roleIdent(roleSuffix, role), ident(schema),
	))
	return err
}

// ChangePasswords updates the passwords of the given roles in the
// current transaction. The roles and passwords slices must have the
// same number of entries, so they can be used in pair.
//
// The `hasher` is used for hashing of the `passwords` before sending
// them to the DBMS, so they may not leak in plaintext (e.g., in the
// DBMS statement logs).
func ChangePasswords(
	ctx context.Context,
	tx *postgres.Tx,
	roleSuffix repo.Role,
	hasher scram.Hasher,
	roles []repo.Role,
	passwords []string,
) error {
	if len(roles) != len(passwords) {
		return errors.New("roles and passwords counts do not match")
	}
	for i, role := range roles {
		h, err := hasher.Hash(passwords[i], "", PasswordHashIterations)
		if err != nil {
			return fmt.Errorf("hashing password of %q: %w", role, err)
		}
		_, err = tx.Exec(ctx, fmt.Sprintf(
			"ALTER ROLE %s WITH PASSWORD '%s'",
			roleIdent(roleSuffix, role), strings.ReplaceAll(h, "'", "''"),
		))
		if err != nil {
			return fmt.Errorf("altering password of %q: %w", role, err)
		}
	}
	return nil
}

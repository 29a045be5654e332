// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres reifies the repo.Pool, repo.Conn, and repo.Tx
// interfaces using the GORM framework (over the pgx driver) for the
// PostgreSQL DBMS. The repository packages (such as questionsrp and
// inspectionsrp) type assert the core-layer interfaces back to the
// Conn and Tx structs of this package and use their GORM method.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// These constants are the PostgreSQL SQLSTATE codes which are examined
// by the repositories in order to classify the DBMS errors.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	ForeignKeyViolation = "23503"
	UniqueViolation     = "23505"
	CannotConnectNow    = "57P03"
)

// HasCode returns true if err wraps a *pgconn.PgError with the given
// SQLSTATE code.
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code
}

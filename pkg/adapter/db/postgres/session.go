// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/expertise/pkg/core/repo"
	"gorm.io/gorm"
)

// session implements the repo.Queryer methods over a *gorm.DB which
// is bound to either a dedicated connection or a transaction.
//
// Parameters in sql may be numbered like $1, $2, etc. as they are
// supported by the PostgreSQL wire protocol natively, while ? and
// @name placeholders are replaced by GORM. If args are given, sql must
// contain exactly one statement. Otherwise, Exec may run multiple
// semi-colon separated statements.
type session struct {
	db *gorm.DB
}

// Exec runs the sql statements and returns the affected rows count.
func (s session) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	res := s.db.WithContext(ctx).Exec(sql, args...)
	if err := res.Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Query runs the sql statement and returns its result set. No other
// statement may run on the same session until Rows is closed.
func (s session) Query(
	ctx context.Context, sql string, args ...any,
) (repo.Rows, error) {
	rows, err := s.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// GORM returns the underlying *gorm.DB in a session of ctx, so the
// repository packages may use the GORM query builder.
func (s session) GORM(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

type rowsAdapter struct {
	*sql.Rows
}

// Close closes the rows. Its error is reported by the Err method.
func (ra rowsAdapter) Close() {
	_ = ra.Rows.Close()
}

// Values scans the current row into a slice with one item per column.
func (ra rowsAdapter) Values() ([]any, error) {
	names, err := ra.Columns()
	if err != nil {
		return nil, fmt.Errorf("column-names: %w", err)
	}
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err = ra.Scan(ptrs...); err != nil {
		return nil, err
	}
	return vals, nil
}

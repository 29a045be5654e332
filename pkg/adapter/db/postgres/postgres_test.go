// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/momeni/expertise/pkg/adapter/db/postgres"
	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, postgres.HasCode(err, postgres.UniqueViolation))
	assert.False(t, postgres.HasCode(err, postgres.ForeignKeyViolation))
	assert.False(t, postgres.HasCode(errors.New("23505"), postgres.UniqueViolation))
	assert.False(t, postgres.HasCode(nil, postgres.UniqueViolation))
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/momeni/expertise/pkg/core/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, log.Setup(&buf, "json", "warn"))
	ctx := context.Background()
	log.Info(ctx, "hidden")
	id := uuid.MustParse("8f7b0a8e-4c2e-4a7e-9d62-3c1f4b0e2a11")
	log.Warn(ctx, "shown", log.UUID("id", id), log.Err("err", errors.New("boom")))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"id":"8f7b0a8e-4c2e-4a7e-9d62-3c1f4b0e2a11"`)
	assert.Contains(t, out, `"err":"boom"`)
	assert.Contains(t, out, "log_test.go", "source must point to caller")
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, log.Setup(&buf, "xml", "info"))
	assert.Error(t, log.Setup(&buf, "text", "loud"))
}

func TestErrNil(t *testing.T) {
	assert.Equal(t, "no-error", log.Err("e", nil).Value.String())
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package schemauc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/momeni/expertise/pkg/core/repo"
	"github.com/momeni/expertise/pkg/core/usecase/schemauc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the operations which are performed by the fakes,
// in their execution order.
type recorder struct {
	calls     []string
	failOn    string
	committed int
}

func (r *recorder) add(format string, args ...any) error {
	c := fmt.Sprintf(format, args...)
	r.calls = append(r.calls, c)
	if c == r.failOn {
		return errors.New("injected failure")
	}
	return nil
}

type pool struct {
	r    *recorder
	role repo.Role
}

func (p *pool) Conn(ctx context.Context, h repo.ConnHandler) error {
	return h(ctx, &conn{r: p.r, role: p.role})
}

func (p *pool) Close() error {
	return p.r.add("close %s", p.role)
}

type conn struct {
	r    *recorder
	role repo.Role
}

func (c *conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}

func (c *conn) Query(context.Context, string, ...any) (repo.Rows, error) {
	return nil, errors.New("unsupported")
}

func (c *conn) IsConn() {
}

func (c *conn) ReadTx(ctx context.Context, h repo.TxHandler) error {
	return h(ctx, &tx{conn: c})
}

func (c *conn) Tx(ctx context.Context, h repo.TxHandler) error {
	if err := h(ctx, &tx{conn: c}); err != nil {
		_ = c.r.add("rollback %s", c.role)
		return err
	}
	c.r.committed++
	return c.r.add("commit %s", c.role)
}

type tx struct {
	*conn
}

func (tx *tx) IsTx() {
}

type schemaRepo struct {
	r *recorder
}

func (s schemaRepo) Tx(repo.Tx) repo.SchemaTxQueryer {
	return s
}

func (s schemaRepo) DropIfExists(_ context.Context, schema string) error {
	return s.r.add("drop %s", schema)
}

func (s schemaRepo) CreateSchema(_ context.Context, schema string) error {
	return s.r.add("create %s", schema)
}

func (s schemaRepo) CreateRoleIfNotExists(_ context.Context, role repo.Role) error {
	return s.r.add("role %s", role)
}

func (s schemaRepo) GrantPrivileges(
	_ context.Context, schema string, role repo.Role,
) error {
	return s.r.add("grant %s %s", schema, role)
}

func (s schemaRepo) SetSearchPath(
	_ context.Context, schema string, role repo.Role,
) error {
	return s.r.add("search_path %s %s", schema, role)
}

func (s schemaRepo) ChangePasswords(
	_ context.Context, roles []repo.Role, passwords []string,
) error {
	return s.r.add("passwords %v %d", roles, len(passwords))
}

type initializer struct {
	r *recorder
}

func (i initializer) InitDevSchema(context.Context) error {
	return i.r.add("init dev")
}

func (i initializer) InitProdSchema(context.Context) error {
	return i.r.add("init prod")
}

type settings struct {
	r *recorder
}

func (s settings) ConnectionPool(
	_ context.Context, role repo.Role,
) (repo.Pool, error) {
	if err := s.r.add("pool %s", role); err != nil {
		return nil, err
	}
	return &pool{r: s.r, role: role}, nil
}

func (s settings) NewSchemaRepo() repo.Schema {
	return schemaRepo{r: s.r}
}

func (s settings) SchemaInitializer(repo.Tx) (repo.SchemaInitializer, error) {
	return initializer{r: s.r}, nil
}

func (s settings) RenewPasswords(
	ctx context.Context,
	change func(context.Context, []repo.Role, []string) error,
	roles ...repo.Role,
) (func() error, error) {
	if err := change(ctx, roles, []string{"p1", "p2"}); err != nil {
		return nil, err
	}
	return func() error {
		return s.r.add("finalize")
	}, nil
}

func TestInitDev(t *testing.T) {
	r := &recorder{}
	uc := schemauc.NewInitDB(settings{r: r})
	require.NoError(t, uc.InitDev(context.Background()))
	assert.Equal(t, []string{
		"pool admin",
		"drop expertise1",
		"create expertise1",
		"role exweb",
		"grant expertise1 exweb",
		"search_path expertise1 exweb",
		"passwords [admin exweb] 2",
		"commit admin",
		"finalize",
		"close admin",
		"pool exweb",
		"init dev",
		"commit exweb",
		"close exweb",
	}, r.calls)
	assert.Equal(t, 2, r.committed)
}

func TestInitProd(t *testing.T) {
	r := &recorder{}
	uc := schemauc.NewInitDB(settings{r: r})
	require.NoError(t, uc.InitProd(context.Background()))
	assert.Contains(t, r.calls, "init prod")
	assert.NotContains(t, r.calls, "init dev")
}

func TestInitDBFailureSkipsFinalizer(t *testing.T) {
	r := &recorder{failOn: "grant expertise1 exweb"}
	uc := schemauc.NewInitDB(settings{r: r})
	err := uc.InitDev(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "granting normal role privs")
	assert.Contains(t, r.calls, "rollback admin")
	assert.NotContains(t, r.calls, "finalize")
	assert.NotContains(t, r.calls, "pool exweb")
	assert.Equal(t, 0, r.committed)
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/expertise/pkg/core/log"
	"github.com/momeni/expertise/pkg/core/repo"
)

// Conn is a dedicated database connection which is acquired from
// a Pool for the lifetime of one repo.ConnHandler call. It is unsafe
// to be used concurrently.
type Conn struct {
	session
}

type TxHandler = repo.TxHandler

// TxOptions are used for the read-write transactions. A READ COMMITTED
// isolation level is enough because each write use case touches its
// own rows and the inspection version counter detects concurrent
// updates.
var TxOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// ReadTxOptions are used for the read-only transactions. All of their
// statements see the snapshot which was taken by the first statement.
var ReadTxOptions = &sql.TxOptions{
	Isolation: sql.LevelRepeatableRead,
	ReadOnly:  true,
}

// Tx begins a transaction on c and passes it to f. The transaction is
// committed if f returns nil. Otherwise, or if f panics, it is rolled
// back and f error is returned after being wrapped by "handler: %w",
// so callers must use errors.Is or errors.As for inspecting it.
func (c *Conn) Tx(ctx context.Context, f TxHandler) error {
	return c.tx(ctx, TxOptions, f)
}

// ReadTx is like Tx, but runs f in a read-only REPEATABLE READ
// transaction.
func (c *Conn) ReadTx(ctx context.Context, f TxHandler) error {
	return c.tx(ctx, ReadTxOptions, f)
}

func (c *Conn) tx(
	ctx context.Context, opts *sql.TxOptions, f TxHandler,
) (err error) {
	gtx := c.db.WithContext(ctx).Begin(opts)
	if err = gtx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panicked: %v", r)
			if rerr := gtx.Rollback().Error; rerr != nil {
				log.Error(ctx, "rollback after panic", log.Err("err", rerr))
			}
			return
		}
		if err != nil {
			err = fmt.Errorf("handler: %w", err)
			if rerr := gtx.Rollback().Error; rerr != nil {
				err = fmt.Errorf("%w, rollback: %w", err, rerr)
			}
			return
		}
		if err = gtx.Commit().Error; err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	return f(ctx, &Tx{session{db: gtx}})
}

// IsConn prevents a Tx from mistakenly implementing repo.Conn.
func (c *Conn) IsConn() {
}

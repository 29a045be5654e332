// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo declares the repository interfaces which are required
// by the use cases layer. The adapters layer implements them (e.g.,
// using GORM and PostgreSQL) and the use cases only depend on these
// interfaces, so they can be tested with in-memory implementations.
package repo

import "context"

// ConnHandler is a callback which receives an acquired connection.
// The connection is released when the handler returns.
type ConnHandler func(context.Context, Conn) error

// Pool represents a database connections pool.
type Pool interface {
	// Conn acquires a connection and passes it to the handler.
	Conn(ctx context.Context, handler ConnHandler) error

	// Close releases all pooled connections.
	Close() error
}

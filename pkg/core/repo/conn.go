package repo

import "context"

// TxHandler is a callback which runs within a transaction. Returning
// a non-nil error (or panicking) rolls the transaction back, while
// a nil error commits it.
type TxHandler func(context.Context, Tx) error

type Conn interface {
	Queryer
	Tx(ctx context.Context, handler TxHandler) error

	// ReadTx runs handler in a read-only transaction whose statements
	// observe one snapshot of the database, so an aggregate which is
	// loaded by several queries is never seen partially removed.
	ReadTx(ctx context.Context, handler TxHandler) error

	IsConn()
}

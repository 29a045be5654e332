// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

// Tx represents a database transaction which is created by Conn.Tx.
// It is unsafe to be used concurrently. Its statements observe the
// ACID properties with the TxOptions isolation level. See
// https://www.postgresql.org/docs/current/transaction-iso.html
type Tx struct {
	session
}

// IsTx prevents a Conn from mistakenly implementing repo.Tx.
func (tx *Tx) IsTx() {
}

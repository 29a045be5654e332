// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram exports the Salted Challenge Response Authentication
// Mechanism (SCRAM) interface which is needed by the use cases. The
// schemauc package only needs to compute the stored form of database
// role passwords, so the DBMS never receives them in plaintext. The
// client and server conversations are handled by PostgreSQL and its
// driver, so they are not modeled here.
// For the implementation, check the pkg/adapter/hash/scram package.
package scram

// Hasher computes SCRAM stored credentials for a fixed underlying hash
// function, such as SHA1 or SHA256.
type Hasher interface {
	// Hash computes the stored credentials of the pass password with
	// the base64 encoded salt (or a random salt if it is empty) and
	// iters PBKDF2 iterations. The result is formatted as
	//
	//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
	//
	// which may be passed to an ALTER or CREATE ROLE query.
	Hash(pass, salt string, iters int) (string, error)
}

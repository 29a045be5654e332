// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scram hashes database role passwords in the SCRAM format
// which is accepted by the PostgreSQL CREATE/ALTER ROLE statements,
// so plaintext passwords never appear in the executed DDL queries.
// SCRAM-SHA-256 and SCRAM-SHA-1 mechanisms are supported using the
// github.com/xdg-go/scram module.
package scram

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/xdg-go/scram"
)

// MinIterations is the least accepted iterations count. PostgreSQL
// uses 4096 by default, while RFC 7677 recommends 15000 or more.
const MinIterations = 4096

// Mechanism hashes passwords with a fixed underlying hash algorithm.
// It implements the pkg/core/scram.Hasher interface.
type Mechanism struct {
	hashGenerator scram.HashGeneratorFcn
	saltLen       int // bytes, equal to the hash output length
	name          string
}

// SHA1 returns the SCRAM-SHA-1 mechanism.
func SHA1() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA1,
		saltLen:       160 / 8,
		name:          "SCRAM-SHA-1",
	}
}

// SHA256 returns the SCRAM-SHA-256 mechanism.
func SHA256() *Mechanism {
	return &Mechanism{
		hashGenerator: scram.SHA256,
		saltLen:       256 / 8,
		name:          "SCRAM-SHA-256",
	}
}

// Name returns the mechanism name, like SCRAM-SHA-256.
func (m *Mechanism) Name() string {
	return m.name
}

// Hash computes the stored form of the pass password as
//
//	SCRAM-{SHA-X}${iters}:{b64-salt}${b64-storedKey}:{b64-serverKey}
//
// The pass is normalized by SASLprep (RFC 4013) and must be non-empty.
// The salt is a base64 string and an empty salt asks for a random one.
// The iters must be at least MinIterations.
func (m *Mechanism) Hash(pass, salt string, iters int) (string, error) {
	switch {
	case pass == "":
		return "", errors.New("password must be non-empty")
	case iters < MinIterations:
		return "", fmt.Errorf(
			"iters (%d) is less than %d", iters, MinIterations,
		)
	}
	if salt == "" {
		b := make([]byte, m.saltLen)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("creating random salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(b)
	}
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decoding base64 salt: %w", err)
	}
	// user and authzID do not affect the stored credentials
	c, err := m.hashGenerator.NewClient("exweb", pass, "")
	if err != nil {
		return "", fmt.Errorf("creating SCRAM client: %w", err)
	}
	sc := c.GetStoredCredentials(scram.KeyFactors{
		Salt:  string(saltBytes),
		Iters: iters,
	})
	return fmt.Sprintf(
		"%s$%d:%s$%s:%s",
		m.name,
		iters, salt,
		base64.StdEncoding.EncodeToString(sc.StoredKey),
		base64.StdEncoding.EncodeToString(sc.ServerKey),
	), nil
}

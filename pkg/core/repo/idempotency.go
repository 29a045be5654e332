// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is the retention of a processed key when the
// caller does not ask for a specific duration.
const DefaultIdempotencyTTL = time.Hour

// Idempotency remembers the results of processed requests by their
// client supplied idempotency keys, so a retried request can replay
// the original result instead of being executed again.
//
// Implementations may keep keys in the process memory or in a shared
// store. Expiry is best-effort: a key may live a bit longer than its
// TTL, but it is never reported after being removed explicitly.
//
// A request which carries a key first claims it with Reserve, so
// overlapping retries of one request cannot run it twice. The claim
// is then settled by MarkAsProcessed, or released by Remove if the
// request fails.
type Idempotency interface {
	// IsDuplicate reports if key is reserved or processed, and is not
	// expired yet.
	IsDuplicate(ctx context.Context, key string) (bool, error)

	// Reserve atomically claims key for ttl, unless key is reserved or
	// processed already. It returns true if the claim was made. A
	// non-positive ttl selects the DefaultIdempotencyTTL.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Result returns the stored result of key. The boolean return value
	// is false if key is unknown, expired, or reserved without a result.
	Result(ctx context.Context, key string) (string, bool, error)

	// MarkAsProcessed stores result for key. A non-positive ttl selects
	// the DefaultIdempotencyTTL.
	MarkAsProcessed(
		ctx context.Context, key, result string, ttl time.Duration,
	) error

	// Remove forgets key explicitly. Removing an unknown key is no-op.
	Remove(ctx context.Context, key string) error
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integrity

import (
	"hash"

	"github.com/zeebo/blake3"
)

// hashBLAKE3 returns the unkeyed, plain BLAKE3 hash of data (32
// bytes). This deliberately does not use a domain-separated keyed
// hash the way some internal content-addressing schemes do: Zarc's
// digest must match what any BLAKE3 implementation produces for the
// same bytes, since it is a format-level identifier rather than a
// cache key scoped to a single codebase.
func hashBLAKE3(data []byte) []byte {
	hasher := blake3.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}

// newBLAKE3Hasher returns a fresh streaming BLAKE3 hasher.
func newBLAKE3Hasher() hash.Hash {
	return blake3.New()
}

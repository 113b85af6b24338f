// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package integrity implements Zarc's digest and signature capability
// dispatch: the single-byte algorithm codes that select a hash
// function and a signature scheme for an entire archive, the
// per-archive ephemeral keypair lifecycle, and the verification
// checks a reader runs before trusting anything a directory claims.
//
// Every algorithm is reached only through its single-byte code, never
// referenced directly by callers outside this package. Adding a new
// digest or signature algorithm means adding cases to the type
// switches in algorithms.go and, for a signature scheme, to
// GenerateKeypair and Sign in keypair.go.
package integrity

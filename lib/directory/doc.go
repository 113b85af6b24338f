// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package directory implements Zarc's directory codec: the CBOR
// record stream that describes every file and content frame in an
// archive, plus the binary layout of the directory header that
// precedes it on disk.
//
// A directory is a sequence of length-prefixed, type-tagged records
// (see Tag and the Encode/Decode pair). Each tag has a fixed
// multiplicity and merge policy — exactly-one-first-wins for Meta,
// collect for File and Frame entries — which this package enforces
// while decoding rather than leaving to callers.
package directory

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive orchestrates Zarc's pack, read, and append
// operations, wiring lib/zstdframe, lib/directory, lib/integrity, and
// lib/framestore together into the on-disk archive format described
// by the module's own specification.
//
// Pack and Append each write a complete archive in a single call. A
// Reader opened with Open is verified once its directory and every
// frame signature have checked out, and only a verified Reader may be
// handed to Append to produce a new edition; a closed Reader refuses
// ExtractFile.
package archive

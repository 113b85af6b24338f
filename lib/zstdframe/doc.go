// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zstdframe implements the Zstandard envelope: the framing
// that every Zarc archive is built from, independent of what any
// particular frame's payload means.
//
// Zstandard defines two frame kinds. A standard frame carries a
// compressed (or, as this package also supports, explicitly
// uncompressed) payload and is understood by any conforming Zstd
// decoder. A skippable frame carries an opaque payload that every
// conforming decoder skips without interpretation; the low 4 bits of
// its magic number ("nibble") are free for the format built on top of
// Zstd to use as it likes. Zarc uses nibble 0 for its header, nibble F
// for the directory header, and nibble E for the EOF trailer.
//
// This package does not reimplement Zstd's entropy coding. Standard
// frame compression and decompression are delegated to
// klauspost/compress/zstd. What this package owns is everything
// Zstd's own API does not expose: locating frame boundaries in an
// already-written file without decompressing their payloads
// (ScanFrames), and constructing the hand-built raw/RLE block frame
// that Zarc's "unintended magic" guard requires, which no streaming
// zstd encoder can produce directly.
package zstdframe

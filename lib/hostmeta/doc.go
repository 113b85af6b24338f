// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostmeta resolves real filesystem metadata into the shape
// lib/directory and lib/archive expect: POSIX mode, owner/group
// tuples, timestamps, symlink targets, and platform attributes or
// extended attributes where the host supports them.
//
// It is not part of the archive format's core contract — a directory
// tree walker remains out of scope for this module — but the pack CLI
// command needs some real metadata source to demonstrate the format
// end-to-end, and a caller embedding the library against its own file
// listing needs somewhere to turn an os.FileInfo into a directory.FileEntry's
// metadata fields without hand-rolling platform-specific stat parsing.
package hostmeta

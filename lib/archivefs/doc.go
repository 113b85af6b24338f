// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archivefs projects an opened archive.Reader as a read-only
// FUSE filesystem. Unlike a filesystem backing a dynamic store, an
// archive's file list is known in full up front, so the tree is built
// once at mount time rather than resolved lazily per lookup.
package archivefs

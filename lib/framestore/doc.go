// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package framestore holds the in-memory, content-addressed map from
// a frame's digest to its on-disk location. It is a derived view: the
// directory's Frame entries are the sole source of truth, and a Store
// is always either built fresh from a verified directory (read path)
// or grown incrementally during an active pack/append (write path).
package framestore

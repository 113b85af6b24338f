// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import "io"

// offsetWriter tracks the absolute byte position written so far,
// relative to wherever w's cursor started. Pack and Append need this
// to record a content frame's starting offset and to compute the EOF
// trailer's distance field, neither of which the plain io.Writer
// interface exposes.
type offsetWriter struct {
	w      io.Writer
	offset int64
}

func newOffsetWriter(w io.Writer, startOffset int64) *offsetWriter {
	return &offsetWriter{w: w, offset: startOffset}
}

func (ow *offsetWriter) Write(p []byte) (int, error) {
	n, err := ow.w.Write(p)
	ow.offset += int64(n)
	return n, err
}

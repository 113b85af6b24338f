// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zstdframe

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// defaultEncoderLevel matches the teacher's own choice for its zstd
// usage: the "default" speed level, a good ratio without excessive
// CPU cost.
const defaultEncoderLevel = zstd.SpeedDefault

// countingWriter tracks the number of bytes written through it, so a
// FrameWriter can report the on-disk length of the frame it produced
// without the caller needing a separate seek-and-measure pass.
type countingWriter struct {
	w     io.Writer
	count int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.count += int64(n)
	return n, err
}

// FrameWriter streams one content frame's payload through a Zstd
// encoder without buffering the whole file in memory, and reports the
// frame's on-disk and uncompressed lengths on Close. It does not hash
// what it writes; lib/archive hashes content in a separate read before
// compressing it.
type FrameWriter struct {
	counting *countingWriter
	encoder  *zstd.Encoder

	uncompressedLength int64
	closed             bool
}

// NewFrameWriter opens a new standard Zstd frame on w. The caller
// must call Close to finish the frame; until then, written bytes may
// be buffered and not yet flushed to w.
func NewFrameWriter(w io.Writer, level zstd.EncoderLevel) (*FrameWriter, error) {
	counting := &countingWriter{w: w}
	encoder, err := zstd.NewWriter(counting, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstdframe: opening encoder: %w", err)
	}
	return &FrameWriter{counting: counting, encoder: encoder}, nil
}

// Write streams p into the current frame.
func (fw *FrameWriter) Write(p []byte) (int, error) {
	n, err := fw.encoder.Write(p)
	fw.uncompressedLength += int64(n)
	if err != nil {
		return n, fmt.Errorf("zstdframe: writing frame content: %w", err)
	}
	return n, nil
}

// Close finishes the frame and reports its on-disk (framed) length
// and the uncompressed length of everything written to it.
func (fw *FrameWriter) Close() (framedLength, uncompressedLength int64, err error) {
	if fw.closed {
		return 0, 0, fmt.Errorf("zstdframe: frame writer already closed")
	}
	fw.closed = true
	if err := fw.encoder.Close(); err != nil {
		return 0, 0, fmt.Errorf("zstdframe: closing frame: %w", err)
	}
	return fw.counting.count, fw.uncompressedLength, nil
}

// WriteStandardFrame compresses payload into a single standard Zstd
// frame written to w. It returns the frame's on-disk length and the
// uncompressed length (len(payload)).
func WriteStandardFrame(w io.Writer, payload []byte, level zstd.EncoderLevel) (framedLength, uncompressedLength int64, err error) {
	fw, err := NewFrameWriter(w, level)
	if err != nil {
		return 0, 0, err
	}
	if _, err := fw.Write(payload); err != nil {
		return 0, 0, err
	}
	return fw.Close()
}

// ReadStandardFrame decompresses exactly one standard Zstd frame from
// r. The caller MUST bound r to exactly that frame's on-disk bytes
// (for example with io.LimitReader, using the frame's framed length
// recorded in the directory or computed from the trailer distance):
// the Zstd stream format permits concatenated frames, including
// skippable ones, and an unbounded reader would cause the decoder to
// silently consume whatever follows.
func ReadStandardFrame(r io.Reader) ([]byte, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstdframe: opening decoder: %w", err)
	}
	defer decoder.Close()

	payload, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("zstdframe: decompressing frame: %w", err)
	}
	return payload, nil
}

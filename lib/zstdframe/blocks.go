// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zstdframe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Zstd block types, per the block header's 2-bit Block_Type field.
const (
	blockTypeRaw        = 0
	blockTypeRLE         = 1
	blockTypeCompressed = 2
)

// maxBlockSize is the largest value the 21-bit Block_Size field can
// hold. Callers writing raw payloads larger than this must split them
// across multiple blocks, as the Rust reference implementation does
// when it builds an uncompressed frame.
const maxBlockSize = 1<<21 - 1

func writeBlockHeader(w io.Writer, blockType byte, last bool, size uint32) error {
	if size > maxBlockSize {
		return fmt.Errorf("zstdframe: block size %d exceeds 21-bit field", size)
	}
	value := uint32(size) << 3
	value |= uint32(blockType) << 1
	if last {
		value |= 1
	}

	var header [3]byte
	header[0] = byte(value)
	header[1] = byte(value >> 8)
	header[2] = byte(value >> 16)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("zstdframe: writing block header: %w", err)
	}
	return nil
}

// WriteRawBlock writes a single raw (uncompressed) Zstd block: a
// 3-byte block header followed by payload verbatim. Raw blocks are
// used for the Zarc header payload carried by the unintended-magic
// frame; see WriteUnintendedMagicFrame.
func WriteRawBlock(w io.Writer, payload []byte, last bool) error {
	if err := writeBlockHeader(w, blockTypeRaw, last, uint32(len(payload))); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("zstdframe: writing raw block payload: %w", err)
	}
	return nil
}

// WriteRLEBlock writes a single RLE (run-length-encoded) Zstd block:
// a 3-byte block header declaring a decompressed size of repeatCount
// copies of b, followed by the single on-disk byte b. The
// unintended-magic frame uses a zero-repeat RLE block (repeatCount=0,
// b=0x00) purely as an inert block that contributes nothing to the
// frame's decompressed content.
func WriteRLEBlock(w io.Writer, b byte, repeatCount uint32, last bool) error {
	if err := writeBlockHeader(w, blockTypeRLE, last, repeatCount); err != nil {
		return err
	}
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("zstdframe: writing RLE block byte: %w", err)
	}
	return nil
}

// frameHeaderDescriptor bit layout (RFC 8878 §3.1.1.1.1):
//
//	bits 0-1  Frame_Content_Size_flag
//	bit  2    Single_Segment_flag
//	bit  3    Unused_bit
//	bit  4    Reserved_bit (must be zero)
//	bit  5    Content_Checksum_flag
//	bits 6-7  Dictionary_ID_flag (always 0 here: Zarc frames never
//	          carry a dictionary)
func writeStandardFrameHeader(w io.Writer, contentSize uint64) error {
	// Frame_Content_Size_flag = 3 selects the 8-byte field
	// unconditionally, regardless of how small contentSize is. This
	// keeps the header layout fixed and simple to parse, at the cost
	// of a few header bytes on tiny frames — an acceptable trade for
	// the unintended-magic frame, which is tiny either way.
	const fcsFlag = 3
	descriptor := byte(fcsFlag)

	windowDescriptor := computeWindowDescriptor(contentSize)

	var buffer [1 + 1 + 8]byte
	buffer[0] = descriptor
	buffer[1] = windowDescriptor
	binary.LittleEndian.PutUint64(buffer[2:10], contentSize)

	var magic [4]byte
	binary.LittleEndian.PutUint32(magic[:], standardFrameMagic)
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("zstdframe: writing frame magic: %w", err)
	}
	if _, err := w.Write(buffer[:]); err != nil {
		return fmt.Errorf("zstdframe: writing frame header: %w", err)
	}
	return nil
}

// computeWindowDescriptor picks the smallest window (Exponent with
// zero Mantissa) that can hold size bytes, clamped to the format's
// valid exponent range. Raw and RLE blocks never reference the
// window, so any window large enough to contain the frame's declared
// content size is valid.
func computeWindowDescriptor(size uint64) byte {
	const minLog = 10
	const maxLog = 41

	log := minLog
	for log < maxLog && (uint64(1)<<uint(log)) < size {
		log++
	}
	return byte((log - minLog) << 3)
}

// WriteUnintendedMagicFrame writes the standard Zstd frame that every
// Zarc archive emits immediately after its header. The frame's first
// block is a raw block carrying headerPayload (the same 4 bytes as
// the Zarc Header's payload) so that a decoder which naively resumed
// scanning at this offset — rather than respecting the skippable
// frame it just skipped — would see the magic bytes again rather than
// garbage. The second block is an inert zero-repeat RLE block.
//
// When advisoryText is non-empty, it is appended immediately after as
// its own standard Zstd frame (compressed via the shared frame
// writer) rather than as a third block of this frame: block-level
// Zstd compression is not exposed by the frame-oriented encoder this
// package builds on, and the advisory text carries no format-defined
// semantics that depend on block boundaries.
func WriteUnintendedMagicFrame(w io.Writer, headerPayload []byte, advisoryText string) error {
	contentSize := uint64(len(headerPayload))
	if err := writeStandardFrameHeader(w, contentSize); err != nil {
		return err
	}
	if err := WriteRawBlock(w, headerPayload, false); err != nil {
		return err
	}
	if err := WriteRLEBlock(w, 0x00, 0, true); err != nil {
		return err
	}

	if advisoryText != "" {
		if _, _, err := WriteStandardFrame(w, []byte(advisoryText), defaultEncoderLevel); err != nil {
			return fmt.Errorf("zstdframe: writing advisory text frame: %w", err)
		}
	}
	return nil
}

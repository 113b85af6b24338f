// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zstdframe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// skippableMagicBase is the Zstd skippable-frame magic number with
// its low nibble cleared. A skippable frame's actual magic is this
// value OR'd with a nibble in [0, 15], which the format layered on
// top of Zstd is free to assign meaning to.
const skippableMagicBase uint32 = 0x184D2A50

// standardFrameMagic is the magic number of a standard (non-skippable)
// Zstd frame.
const standardFrameMagic uint32 = 0xFD2FB528

// skippableFrameHeaderSize is the magic (4 bytes) plus the
// frame-size field (4 bytes) that precede every skippable frame's
// payload.
const skippableFrameHeaderSize = 8

// WriteSkippableFrame writes a complete skippable frame: magic number
// with the given nibble, a little-endian u32 payload length, then the
// payload itself. nibble must be in [0, 15].
func WriteSkippableFrame(w io.Writer, nibble byte, payload []byte) error {
	if nibble > 0xF {
		return fmt.Errorf("zstdframe: skippable nibble %X out of range", nibble)
	}
	if len(payload) > 0xFFFFFFFF {
		return fmt.Errorf("zstdframe: skippable payload too large: %d bytes", len(payload))
	}

	var header [skippableFrameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:4], skippableMagicBase|uint32(nibble))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("zstdframe: writing skippable frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("zstdframe: writing skippable frame payload: %w", err)
	}
	return nil
}

// ReadSkippableFrame reads one skippable frame from r, which must be
// positioned exactly at the frame's magic number. It returns the
// frame's nibble and payload.
func ReadSkippableFrame(r io.Reader) (nibble byte, payload []byte, err error) {
	var header [skippableFrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return 0, nil, &FormatError{Kind: Truncated, Offset: -1, Cause: err}
		}
		return 0, nil, fmt.Errorf("zstdframe: reading skippable frame header: %w", err)
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic&0xFFFFFFF0 != skippableMagicBase {
		return 0, nil, &FormatError{Kind: NotZstd, Offset: -1}
	}
	nibble = byte(magic & 0xF)

	length := binary.LittleEndian.Uint32(header[4:8])
	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, &FormatError{Kind: Truncated, Offset: -1, Cause: err}
	}
	return nibble, payload, nil
}

// ReadSkippableAt reads the skippable frame beginning at offset in r
// and verifies its nibble equals expectedNibble. It returns the
// payload and the total on-disk length of the frame (header plus
// payload).
func ReadSkippableAt(r io.ReaderAt, offset int64, expectedNibble byte) (payload []byte, frameLength int64, err error) {
	var header [skippableFrameHeaderSize]byte
	if _, err := r.ReadAt(header[:], offset); err != nil {
		return nil, 0, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic&0xFFFFFFF0 != skippableMagicBase {
		return nil, 0, &FormatError{Kind: NotZstd, Offset: offset}
	}
	gotNibble := byte(magic & 0xF)
	if gotNibble != expectedNibble {
		return nil, 0, &FormatError{Kind: WrongFrameKind, Offset: offset, Want: expectedNibble, Got: gotNibble}
	}

	length := binary.LittleEndian.Uint32(header[4:8])
	payload = make([]byte, length)
	if _, err := r.ReadAt(payload, offset+skippableFrameHeaderSize); err != nil {
		return nil, 0, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
	}
	return payload, skippableFrameHeaderSize + int64(length), nil
}

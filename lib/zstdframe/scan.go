// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zstdframe

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
)

// FrameKind distinguishes the two Zstd frame shapes a scan can
// encounter.
type FrameKind int

const (
	KindStandard FrameKind = iota
	KindSkippable
)

// Frame describes one frame located by ScanFrames, without
// decompressing its payload.
type Frame struct {
	Kind FrameKind

	// Nibble is meaningful only when Kind is KindSkippable.
	Nibble byte

	// Offset is the frame's starting byte position, including its
	// magic number.
	Offset int64

	// Length is the frame's total on-disk size, including its magic
	// number and any trailing checksum.
	Length int64
}

// ScanFrames walks the frames in r between [start, end) without
// decompressing any standard frame's payload, yielding each frame's
// kind, offset, and on-disk length in order. It stops and yields an
// error if a frame cannot be parsed.
//
// Open uses it to locate the unintended-magic frame right after the
// Zarc Header, and the debug command uses it to list every frame. The
// read path's frame index comes from the directory's Frame entries
// (lib/framestore), not from a scan.
func ScanFrames(r io.ReaderAt, start, end int64) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		offset := start
		for offset < end {
			frame, err := readFrameAt(r, offset)
			if err != nil {
				yield(Frame{}, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
			offset += frame.Length
		}
	}
}

func readFrameAt(r io.ReaderAt, offset int64) (Frame, error) {
	var magicBytes [4]byte
	if _, err := r.ReadAt(magicBytes[:], offset); err != nil {
		return Frame{}, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
	}
	magic := binary.LittleEndian.Uint32(magicBytes[:])

	if magic&0xFFFFFFF0 == skippableMagicBase {
		var lengthBytes [4]byte
		if _, err := r.ReadAt(lengthBytes[:], offset+4); err != nil {
			return Frame{}, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
		}
		length := binary.LittleEndian.Uint32(lengthBytes[:])
		return Frame{
			Kind:   KindSkippable,
			Nibble: byte(magic & 0xF),
			Offset: offset,
			Length: skippableFrameHeaderSize + int64(length),
		}, nil
	}

	if magic != standardFrameMagic {
		return Frame{}, &FormatError{Kind: NotZstd, Offset: offset}
	}

	length, err := standardFrameLength(r, offset)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Kind: KindStandard, Offset: offset, Length: length}, nil
}

// standardFrameLength computes the total on-disk length of the
// standard frame beginning at offset, by parsing the frame header and
// then walking block headers (without decompressing block data) until
// the last-block flag is set.
func standardFrameLength(r io.ReaderAt, offset int64) (int64, error) {
	descriptorOffset := offset + 4
	var descriptor [1]byte
	if _, err := r.ReadAt(descriptor[:], descriptorOffset); err != nil {
		return 0, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
	}

	fcsFlag := descriptor[0] & 0x3
	singleSegment := descriptor[0]&0x4 != 0
	checksumFlag := descriptor[0]&0x20 != 0
	dictIDFlag := (descriptor[0] >> 6) & 0x3

	cursor := descriptorOffset + 1
	if !singleSegment {
		cursor++ // Window_Descriptor
	}

	switch dictIDFlag {
	case 0:
	case 1:
		cursor++
	case 2:
		cursor += 2
	case 3:
		cursor += 4
	}

	var fcsFieldSize int64
	switch {
	case fcsFlag == 0 && singleSegment:
		fcsFieldSize = 1
	case fcsFlag == 0:
		fcsFieldSize = 0
	case fcsFlag == 1:
		fcsFieldSize = 2
	case fcsFlag == 2:
		fcsFieldSize = 4
	case fcsFlag == 3:
		fcsFieldSize = 8
	}
	cursor += fcsFieldSize

	blocksLength, err := scanBlocks(r, cursor)
	if err != nil {
		return 0, err
	}
	cursor += blocksLength

	if checksumFlag {
		cursor += 4
	}

	return cursor - offset, nil
}

// scanBlocks walks block headers starting at offset until the
// last-block flag is observed, returning the total byte span
// (headers plus data) consumed.
func scanBlocks(r io.ReaderAt, offset int64) (int64, error) {
	start := offset
	for {
		var header [3]byte
		if _, err := r.ReadAt(header[:], offset); err != nil {
			return 0, &FormatError{Kind: Truncated, Offset: offset, Cause: err}
		}
		value := uint32(header[0]) | uint32(header[1])<<8 | uint32(header[2])<<16
		last := value&1 != 0
		blockType := byte((value >> 1) & 0x3)
		size := value >> 3

		offset += 3
		switch blockType {
		case blockTypeRLE:
			offset += 1
		case blockTypeRaw, blockTypeCompressed:
			offset += int64(size)
		default:
			return 0, &FormatError{Kind: NotZstd, Offset: offset, Cause: fmt.Errorf("reserved block type")}
		}

		if last {
			return offset - start, nil
		}
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zarcfile/zarc/lib/zstdframe"
)

// headerNibble is the skippable-frame nibble carrying the Zarc
// Header: the first thing in any valid archive.
const headerNibble = 0x0

// directoryHeaderNibble is the skippable-frame nibble carrying the
// directory header, immediately before the EOF trailer.
const directoryHeaderNibble = 0xF

// trailerNibble is the skippable-frame nibble carrying the EOF
// trailer: the last thing in any valid archive.
const trailerNibble = 0xE

// zarcHeaderVersion is the Zarc Header's own version byte, distinct
// from the directory's file/directory version bytes.
const zarcHeaderVersion = 0x01

// zarcHeaderPayload is the fixed 4-byte payload of the Zarc Header
// skippable frame: the 3-byte magic plus a 1-byte version. The same
// bytes are repeated as the first block of the unintended-magic frame
// that follows it.
var zarcHeaderPayload = [4]byte{0x65, 0xAA, 0xDC, zarcHeaderVersion}

// writeZarcHeader emits the Zarc Header skippable frame.
func writeZarcHeader(w io.Writer) error {
	return zstdframe.WriteSkippableFrame(w, headerNibble, zarcHeaderPayload[:])
}

// readZarcHeader reads and validates the Zarc Header at offset 0,
// returning its on-disk length.
func readZarcHeader(r io.ReaderAt) (int64, error) {
	payload, length, err := zstdframe.ReadSkippableAt(r, 0, headerNibble)
	if err != nil {
		return 0, fmt.Errorf("archive: reading zarc header: %w", err)
	}
	if len(payload) != len(zarcHeaderPayload) {
		return 0, fmt.Errorf("archive: zarc header is %d bytes, want %d", len(payload), len(zarcHeaderPayload))
	}
	if [3]byte(payload[0:3]) != [3]byte(zarcHeaderPayload[0:3]) {
		return 0, fmt.Errorf("archive: zarc header bad magic %x", payload[0:3])
	}
	if payload[3] != zarcHeaderVersion {
		return 0, fmt.Errorf("archive: unsupported zarc header version %d", payload[3])
	}
	return length, nil
}

// trailerSize is the EOF trailer's fixed on-disk length: an 8-byte
// skippable frame header plus its 8-byte u64 payload.
const trailerSize = 8 + 8

// writeTrailer emits the EOF trailer: a single little-endian u64,
// the byte distance from the start of the directory-header frame to
// the start of this trailer frame.
func writeTrailer(w io.Writer, distance uint64) error {
	var payload [8]byte
	binary.LittleEndian.PutUint64(payload[:], distance)
	return zstdframe.WriteSkippableFrame(w, trailerNibble, payload[:])
}

// readTrailer reads the EOF trailer, which must occupy the final
// trailerSize bytes of the archive (fileSize is the archive's total
// length), and returns the distance it encodes.
func readTrailer(r io.ReaderAt, fileSize int64) (uint64, error) {
	if fileSize < trailerSize {
		return 0, fmt.Errorf("archive: file too small to contain a trailer: %d bytes", fileSize)
	}
	payload, length, err := zstdframe.ReadSkippableAt(r, fileSize-trailerSize, trailerNibble)
	if err != nil {
		return 0, fmt.Errorf("archive: reading eof trailer: %w", err)
	}
	if length != trailerSize {
		return 0, fmt.Errorf("archive: eof trailer is %d bytes, want %d", length, trailerSize)
	}
	if len(payload) != 8 {
		return 0, fmt.Errorf("archive: eof trailer payload is %d bytes, want 8", len(payload))
	}
	return binary.LittleEndian.Uint64(payload), nil
}

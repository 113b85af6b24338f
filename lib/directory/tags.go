// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zarcfile/zarc/lib/codec"
)

// RecordTag identifies the kind of a directory record. Tags below
// 32768 are reserved by the format; tags 32768 and above are private
// and available for archive-specific extensions.
type RecordTag uint16

const (
	TagMeta          RecordTag = 1
	TagWrittenAt     RecordTag = 2
	TagUserMetadata  RecordTag = 10
	TagPriorVersion  RecordTag = 13
	TagFileEntry     RecordTag = 20
	TagFrameEntry    RecordTag = 21
	TagAttestation   RecordTag = 40000
)

func (tag RecordTag) String() string {
	switch tag {
	case TagMeta:
		return "meta"
	case TagWrittenAt:
		return "written-at"
	case TagUserMetadata:
		return "user-metadata"
	case TagPriorVersion:
		return "prior-version"
	case TagFileEntry:
		return "file"
	case TagFrameEntry:
		return "frame"
	case TagAttestation:
		return "attestation"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(tag))
	}
}

// recordHeaderSize is the on-disk size of a record's framing prefix:
// a u16 LE tag followed by a u32 LE payload length.
const recordHeaderSize = 2 + 4

// WriteRecord writes one tag-length-payload record: a u16 LE tag, a
// u32 LE length, and the CBOR-encoded payload.
func WriteRecord(w io.Writer, tag RecordTag, payload any) (int64, error) {
	body, err := codec.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("directory: encode %s record: %w", tag, err)
	}
	if uint64(len(body)) > uint64(^uint32(0)) {
		return 0, fmt.Errorf("directory: %s record too large: %d bytes", tag, len(body))
	}

	header := make([]byte, recordHeaderSize)
	binary.LittleEndian.PutUint16(header[0:2], uint16(tag))
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(body)))

	if _, err := w.Write(header); err != nil {
		return 0, fmt.Errorf("directory: write %s record header: %w", tag, err)
	}
	if _, err := w.Write(body); err != nil {
		return 0, fmt.Errorf("directory: write %s record body: %w", tag, err)
	}
	return int64(len(header) + len(body)), nil
}

// RawRecord is one tag-length-payload record as read off the wire,
// before its payload is decoded into a concrete Go type.
type RawRecord struct {
	Tag     RecordTag
	Payload []byte
}

// ReadRecord reads one tag-length-payload record from r. It returns
// io.EOF (unwrapped) when r is exhausted exactly at a record
// boundary.
func ReadRecord(r io.Reader) (RawRecord, error) {
	header := make([]byte, recordHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return RawRecord{}, fmt.Errorf("directory: truncated record header: %w", err)
		}
		return RawRecord{}, err
	}

	tag := RecordTag(binary.LittleEndian.Uint16(header[0:2]))
	length := binary.LittleEndian.Uint32(header[2:6])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return RawRecord{}, fmt.Errorf("directory: truncated %s record payload: %w", tag, err)
	}

	return RawRecord{Tag: tag, Payload: payload}, nil
}

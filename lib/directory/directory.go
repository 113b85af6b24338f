// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zarcfile/zarc/lib/codec"
)

// Directory is the decoded record stream: the Meta record plus every
// collected and merged record that followed it, keyed the way each
// tag's merge policy requires.
type Directory struct {
	Meta         Meta
	WrittenAt    *WrittenAt
	UserMetadata []UserMetadataRecord
	PriorVersions []PriorVersion
	Files        []FileEntry
	Frames       []FrameEntry
	Attestations []Attestation
}

// FrameByDigest returns the FrameEntry recorded for digest, if any.
func (d *Directory) FrameByDigest(digest []byte) (FrameEntry, bool) {
	for _, frame := range d.Frames {
		if bytes.Equal(frame.Digest, digest) {
			return frame, true
		}
	}
	return FrameEntry{}, false
}

// Encode writes the directory's record stream in canonical order:
// Meta first, then every other record in the order they were
// accumulated. Canonical order is a writer convention, not a reader
// requirement; Decode accepts any order as long as Meta is first.
func Encode(w io.Writer, d *Directory) error {
	if _, err := WriteRecord(w, TagMeta, d.Meta); err != nil {
		return err
	}
	if d.WrittenAt != nil {
		if _, err := WriteRecord(w, TagWrittenAt, *d.WrittenAt); err != nil {
			return err
		}
	}
	for _, record := range d.UserMetadata {
		if _, err := WriteRecord(w, TagUserMetadata, record); err != nil {
			return err
		}
	}
	for _, record := range d.PriorVersions {
		if _, err := WriteRecord(w, TagPriorVersion, record); err != nil {
			return err
		}
	}
	for _, entry := range d.Files {
		if err := ValidatePathComponents(entry.Path); err != nil {
			return err
		}
		if _, err := WriteRecord(w, TagFileEntry, entry); err != nil {
			return err
		}
	}
	seenOffsets := make(map[uint64]bool, len(d.Frames))
	for _, frame := range d.Frames {
		if seenOffsets[frame.Offset] {
			return &DirectoryError{Kind: DuplicateFrameOffset, Subject: fmt.Sprintf("%d", frame.Offset)}
		}
		seenOffsets[frame.Offset] = true
		if _, err := WriteRecord(w, TagFrameEntry, frame); err != nil {
			return err
		}
	}
	for _, attestation := range d.Attestations {
		if _, err := WriteRecord(w, TagAttestation, attestation); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a directory's record stream, applying each tag's
// merge policy (first-wins for Meta, last-wins for Written-At,
// collect for the rest) and enforcing the structural invariants that
// do not depend on cryptographic verification: Meta must be present
// and first, Frame entries must not repeat an offset, and File entry
// pathnames must be well-formed.
func Decode(r io.Reader) (*Directory, error) {
	d := &Directory{}
	sawMeta := false
	recordIndex := 0
	seenOffsets := make(map[uint64]bool)

	for {
		record, err := ReadRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if recordIndex == 0 && record.Tag != TagMeta {
			return nil, &DirectoryError{Kind: MetaNotFirst, Subject: record.Tag.String()}
		}
		recordIndex++

		switch record.Tag {
		case TagMeta:
			if sawMeta {
				continue // first-wins: ignore any later Meta record
			}
			var meta Meta
			if err := codec.Unmarshal(record.Payload, &meta); err != nil {
				return nil, fmt.Errorf("directory: decode meta record: %w", err)
			}
			d.Meta = meta
			sawMeta = true

		case TagWrittenAt:
			var writtenAt WrittenAt
			if err := codec.Unmarshal(record.Payload, &writtenAt); err != nil {
				return nil, fmt.Errorf("directory: decode written-at record: %w", err)
			}
			d.WrittenAt = &writtenAt // last-wins

		case TagUserMetadata:
			var userMetadata UserMetadataRecord
			if err := codec.Unmarshal(record.Payload, &userMetadata); err != nil {
				return nil, fmt.Errorf("directory: decode user-metadata record: %w", err)
			}
			d.UserMetadata = append(d.UserMetadata, userMetadata)

		case TagPriorVersion:
			var priorVersion PriorVersion
			if err := codec.Unmarshal(record.Payload, &priorVersion); err != nil {
				return nil, fmt.Errorf("directory: decode prior-version record: %w", err)
			}
			d.PriorVersions = append(d.PriorVersions, priorVersion)

		case TagFileEntry:
			var entry FileEntry
			if err := codec.Unmarshal(record.Payload, &entry); err != nil {
				return nil, fmt.Errorf("directory: decode file record: %w", err)
			}
			if err := ValidatePathComponents(entry.Path); err != nil {
				return nil, err
			}
			d.Files = append(d.Files, entry)

		case TagFrameEntry:
			var frame FrameEntry
			if err := codec.Unmarshal(record.Payload, &frame); err != nil {
				return nil, fmt.Errorf("directory: decode frame record: %w", err)
			}
			if seenOffsets[frame.Offset] {
				return nil, &DirectoryError{Kind: DuplicateFrameOffset, Subject: fmt.Sprintf("%d", frame.Offset)}
			}
			seenOffsets[frame.Offset] = true
			d.Frames = append(d.Frames, frame)

		case TagAttestation:
			var attestation Attestation
			if err := codec.Unmarshal(record.Payload, &attestation); err != nil {
				return nil, fmt.Errorf("directory: decode attestation record: %w", err)
			}
			d.Attestations = append(d.Attestations, attestation)

		default:
			// Unknown tags below the private range are a forward-
			// compatibility hazard for this build but not a structural
			// violation; skip them. Unknown tags in the private range
			// are the archive writer's own business.
		}
	}

	if !sawMeta {
		return nil, &DirectoryError{Kind: MissingMeta}
	}

	if err := checkDanglingDigests(d); err != nil {
		return nil, err
	}

	return d, nil
}

// checkDanglingDigests verifies that every regular File entry's
// content digest names a Frame entry actually present in the
// directory.
func checkDanglingDigests(d *Directory) error {
	for _, entry := range d.Files {
		if !entry.IsRegular() || len(entry.Digest) == 0 {
			continue
		}
		if _, ok := d.FrameByDigest(entry.Digest); !ok {
			return &DirectoryError{
				Kind:    DanglingDigest,
				Subject: hex.EncodeToString(entry.Digest),
			}
		}
	}
	return nil
}

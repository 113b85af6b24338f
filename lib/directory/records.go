// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import "time"

// Timestamps carries the filesystem timestamps recorded for a File
// entry. Every field is optional: archives packed from sources that
// do not track, say, creation time simply omit it. Encoding relies on
// the CBOR codec's native time.Time support (RFC 3339 text on the
// wire, tag 1 numeric epoch accepted on decode), so no bespoke
// marshaling is needed here.
type Timestamps struct {
	ModifiedAt *time.Time `cbor:"modified,omitempty"`
	AccessedAt *time.Time `cbor:"accessed,omitempty"`
	CreatedAt  *time.Time `cbor:"created,omitempty"`
}

// WrittenAt is the Tag 2 record: the instant the archive (or this
// edition of it) was written. Last-wins if more than one appears,
// which matters for Append: the new edition's Written-At record
// supersedes the archive's previous one.
type WrittenAt struct {
	Time time.Time `cbor:"time"`
}

// UserMetadataRecord is the Tag 10 record: an opaque caller-supplied
// key/value pair, unrelated to any particular file. Multiple records
// are collected, not merged; a later record with the same key does
// not overwrite an earlier one. Keys have no format-imposed meaning.
type UserMetadataRecord struct {
	Key   string `cbor:"key"`
	Value []byte `cbor:"value"`
}

// PriorVersion is the Tag 13 record: a pointer to an earlier edition
// of the directory, retained across an Append so that readers can
// recover history. Edition 0 always refers to the current directory;
// PriorVersion records describe editions 1 and up. Meta carries the
// prior directory header's Meta payload verbatim (the snapshot a
// reader of that edition would have verified against), so history
// survives even though the prior directory header itself is not
// copied forward into the new file.
type PriorVersion struct {
	Edition         uint64    `cbor:"edition"`
	DirectoryOffset uint64    `cbor:"directory_offset"`
	DirectoryDigest []byte    `cbor:"directory_digest"`
	Meta            []byte    `cbor:"meta"`
	WrittenAt       time.Time `cbor:"written_at"`
}

// FileEntry is the Tag 20 record: one pathname and the metadata
// needed to reconstruct it, for both regular files and the special
// kinds (directories, symlinks, hardlinks) described by Special.
// A regular file's content lives in exactly one content frame,
// referenced here by the digest of its uncompressed content; files
// with identical content share that frame.
type FileEntry struct {
	Path         []PathComponent   `cbor:"path"`
	Special      *SpecialFile      `cbor:"special,omitempty"`
	Owner        PosixOwner        `cbor:"owner,omitempty"`
	Group        PosixOwner        `cbor:"group,omitempty"`
	Mode         uint32            `cbor:"mode,omitempty"`
	Size         uint64            `cbor:"size,omitempty"`
	Digest       []byte            `cbor:"digest,omitempty"`
	EditionAdded uint64            `cbor:"edition_added,omitempty"`
	Timestamps   Timestamps        `cbor:"timestamps,omitempty"`

	// UserMetadata is an opaque per-file key/value map, distinct from
	// the archive-wide User-Metadata records: a caller-supplied
	// annotation attached to this one entry.
	UserMetadata map[string][]byte `cbor:"user_metadata,omitempty"`

	// Attributes carries platform-specific file attributes under a
	// namespaced key (win32.hidden, win32.system, linux.immutable,
	// bsd.append_only, and so on), so a reader on one platform can see
	// what a writer on another recorded without either having to agree
	// on a shared attribute vocabulary.
	Attributes map[string]string `cbor:"attributes,omitempty"`

	// Xattrs carries POSIX extended attributes by name, verbatim.
	Xattrs map[string][]byte `cbor:"xattrs,omitempty"`
}

// IsRegular reports whether the entry describes an ordinary file
// rather than a directory, symlink, or hardlink.
func (e FileEntry) IsRegular() bool {
	return e.Special == nil
}

// FrameEntry is the Tag 21 record: one content frame's location and
// size bookkeeping, keyed by the digest of its uncompressed content.
// Each FrameEntry describes a single frame, found at most once per digest
// per archive (the format rejects a duplicate Frame record for a
// digest already present, since that would describe the same content
// at two offsets).
type FrameEntry struct {
	Digest           []byte `cbor:"digest"`
	Offset           uint64 `cbor:"offset"`
	FramedSize       uint64 `cbor:"framed_size"`
	UncompressedSize uint64 `cbor:"uncompressed_size"`
	Signature        []byte `cbor:"signature"`
	EditionAdded     uint64 `cbor:"edition_added,omitempty"`
}

// Attestation is the Tag 40000 record (private range): an opaque
// caller-supplied data blob, signed under this edition's own keypair
// and verified under the archive's public key on Open, independent of
// the directory's own integrity signature. It exists so that a packer
// can embed, say, a reproducible-build provenance statement alongside
// the archive without the format needing to know anything about the
// blob's shape beyond that it verifies.
type Attestation struct {
	Data      []byte `cbor:"data"`
	Signature []byte `cbor:"signature"`
}

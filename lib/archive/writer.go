// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/yuin/goldmark"

	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/framestore"
	"github.com/zarcfile/zarc/lib/integrity"
	"github.com/zarcfile/zarc/lib/zstdframe"
)

// ContentOpener opens a fresh, independent reader over one input's
// content. Pack calls it twice for novel content (once to hash, once
// to compress), so it must return a new reader each time rather than
// replaying a single already-consumed one.
type ContentOpener func() (io.ReadCloser, error)

// Input describes one entry to add to an archive: a pathname plus
// either file content (via Open) or a special-file description.
type Input struct {
	Path         []directory.PathComponent
	Special      *directory.SpecialFile
	Owner        directory.PosixOwner
	Group        directory.PosixOwner
	Mode         uint32
	Timestamps   directory.Timestamps
	UserMetadata map[string][]byte
	Attributes   map[string]string
	Xattrs       map[string][]byte

	// Open is nil for special files (directories, symlinks, hardlinks)
	// and required for regular files.
	Open ContentOpener
}

// Options configures a Pack or Append operation.
type Options struct {
	DigestType       integrity.DigestType
	SignatureType    integrity.SignatureType
	CompressionLevel zstd.EncoderLevel

	// AdvisoryMarkdown, when non-empty, is rendered to HTML and
	// embedded as the unintended-magic frame's advisory text: a
	// human-readable note visible to a naive tool that decompresses
	// the archive's leading frames without understanding Zarc.
	AdvisoryMarkdown string

	UserMetadata []directory.UserMetadataRecord

	// Attestation, when non-nil, carries a caller-supplied data blob
	// that gets signed under this call's freshly generated keypair and
	// stored as a Signed Attestation record. Only Data is read; any
	// Signature the caller sets is ignored and replaced, since the
	// per-edition secret key does not exist until this call generates
	// it.
	Attestation *directory.Attestation
}

func (o Options) compressionLevel() zstd.EncoderLevel {
	if o.CompressionLevel == 0 {
		return zstd.SpeedDefault
	}
	return o.CompressionLevel
}

// Pack writes a complete new archive to w: the Zarc Header, the
// unintended-magic frame, one content frame per distinct digest among
// inputs, the directory, the directory header, and the EOF trailer.
func Pack(w io.Writer, inputs []Input, opts Options) error {
	keypair, err := integrity.GenerateKeypair(opts.SignatureType)
	if err != nil {
		return fmt.Errorf("archive: generating keypair: %w", err)
	}
	defer keypair.Zero()

	ow := newOffsetWriter(w, 0)

	if err := writeZarcHeader(ow); err != nil {
		return fmt.Errorf("archive: writing zarc header: %w", err)
	}

	advisoryText, err := renderAdvisory(opts.AdvisoryMarkdown)
	if err != nil {
		return err
	}
	if err := zstdframe.WriteUnintendedMagicFrame(ow, zarcHeaderPayload[:], advisoryText); err != nil {
		return fmt.Errorf("archive: writing unintended-magic frame: %w", err)
	}

	dir := &directory.Directory{
		WrittenAt:    &directory.WrittenAt{Time: time.Now().UTC()},
		UserMetadata: opts.UserMetadata,
	}
	if opts.Attestation != nil {
		attestation, err := signAttestation(opts.Attestation, keypair)
		if err != nil {
			return err
		}
		dir.Attestations = append(dir.Attestations, attestation)
	}

	store := framestore.New()
	for _, input := range inputs {
		entry, err := packInput(ow, input, opts, keypair, store, dir, 0)
		if err != nil {
			return err
		}
		dir.Files = append(dir.Files, entry)
	}

	return finishDirectory(ow, dir, keypair, opts)
}

// packInput streams one input's content (if any) into the archive,
// deduplicating against store, and returns its File entry. edition is
// the edition number new File/Frame entries are stamped with; Pack and
// Append both pass 0, the current edition.
func packInput(ow *offsetWriter, input Input, opts Options, keypair *integrity.Keypair, store *framestore.Store, dir *directory.Directory, edition uint64) (directory.FileEntry, error) {
	if err := directory.ValidatePathComponents(input.Path); err != nil {
		return directory.FileEntry{}, err
	}

	entry := directory.FileEntry{
		Path:         input.Path,
		Special:      input.Special,
		Owner:        input.Owner,
		Group:        input.Group,
		Mode:         input.Mode,
		Timestamps:   input.Timestamps,
		UserMetadata: input.UserMetadata,
		Attributes:   input.Attributes,
		Xattrs:       input.Xattrs,
		EditionAdded: edition,
	}

	if input.Open == nil {
		return entry, nil
	}

	digest, size, err := hashContent(input.Open, opts.DigestType)
	if err != nil {
		return directory.FileEntry{}, err
	}
	entry.Size = size
	entry.Digest = digest

	if _, ok := store.Lookup(digest); ok {
		return entry, nil
	}

	frameEntry, err := writeContentFrame(ow, input.Open, digest, opts, keypair, edition)
	if err != nil {
		return directory.FileEntry{}, err
	}

	if err := store.Insert(digest, framestore.Entry{
		Offset:           frameEntry.Offset,
		FramedSize:       frameEntry.FramedSize,
		UncompressedSize: frameEntry.UncompressedSize,
	}); err != nil {
		return directory.FileEntry{}, err
	}
	dir.Frames = append(dir.Frames, frameEntry)

	return entry, nil
}

// signAttestation signs caller's attestation data under keypair,
// producing the record actually stored on disk. The caller's own
// Signature field, if any, is ignored.
func signAttestation(caller *directory.Attestation, keypair *integrity.Keypair) (directory.Attestation, error) {
	signature, err := keypair.Sign(caller.Data)
	if err != nil {
		return directory.Attestation{}, fmt.Errorf("archive: signing attestation: %w", err)
	}
	return directory.Attestation{Data: caller.Data, Signature: signature}, nil
}

func hashContent(open ContentOpener, digestType integrity.DigestType) (digest []byte, size uint64, err error) {
	hasher, err := digestType.NewHasher()
	if err != nil {
		return nil, 0, err
	}
	r, err := open()
	if err != nil {
		return nil, 0, fmt.Errorf("archive: opening content for hashing: %w", err)
	}
	defer r.Close()

	n, err := io.Copy(hasher, r)
	if err != nil {
		return nil, 0, fmt.Errorf("archive: hashing content: %w", err)
	}
	return hasher.Sum(nil), uint64(n), nil
}

func writeContentFrame(ow *offsetWriter, open ContentOpener, digest []byte, opts Options, keypair *integrity.Keypair, edition uint64) (directory.FrameEntry, error) {
	r, err := open()
	if err != nil {
		return directory.FrameEntry{}, fmt.Errorf("archive: opening content for compression: %w", err)
	}
	defer r.Close()

	frameStart := ow.offset
	fw, err := zstdframe.NewFrameWriter(ow, opts.compressionLevel())
	if err != nil {
		return directory.FrameEntry{}, fmt.Errorf("archive: opening content frame: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return directory.FrameEntry{}, fmt.Errorf("archive: writing content frame: %w", err)
	}
	framedLength, uncompressedLength, err := fw.Close()
	if err != nil {
		return directory.FrameEntry{}, fmt.Errorf("archive: closing content frame: %w", err)
	}

	signature, err := keypair.Sign(digest)
	if err != nil {
		return directory.FrameEntry{}, fmt.Errorf("archive: signing frame digest: %w", err)
	}

	return directory.FrameEntry{
		Digest:           digest,
		Offset:           uint64(frameStart),
		FramedSize:       uint64(framedLength),
		UncompressedSize: uint64(uncompressedLength),
		Signature:        signature,
		EditionAdded:     edition,
	}, nil
}

// finishDirectory resolves the directory's self-referential
// uncompressed-length field in two passes, signs the result, and
// emits the directory header frame, the directory's own Zstd frame,
// and the EOF trailer.
func finishDirectory(ow *offsetWriter, dir *directory.Directory, keypair *integrity.Keypair, opts Options) error {
	body, err := encodeRecordBody(dir)
	if err != nil {
		return fmt.Errorf("archive: encoding directory records: %w", err)
	}

	header := directory.Header{
		DigestType:    opts.DigestType,
		SignatureType: opts.SignatureType,
		PublicKey:     keypair.Public,
	}

	metaSize, err := metaRecordSize(header)
	if err != nil {
		return err
	}
	header.UncompressedLength = uint64(metaSize) + uint64(len(body))

	dir.Meta, err = directory.NewMeta(header)
	if err != nil {
		return fmt.Errorf("archive: building meta record: %w", err)
	}
	var metaBuf bytes.Buffer
	if _, err := directory.WriteRecord(&metaBuf, directory.TagMeta, dir.Meta); err != nil {
		return fmt.Errorf("archive: encoding meta record: %w", err)
	}
	if metaBuf.Len() != metaSize {
		return fmt.Errorf("archive: meta record size changed between passes: %d != %d", metaBuf.Len(), metaSize)
	}

	directoryBytes := append(metaBuf.Bytes(), body...)

	digest, err := opts.DigestType.Hash(directoryBytes)
	if err != nil {
		return fmt.Errorf("archive: hashing directory: %w", err)
	}
	signature, err := keypair.Sign(digest)
	if err != nil {
		return fmt.Errorf("archive: signing directory: %w", err)
	}
	header.Digest = digest
	header.Signature = signature

	headerFrameStart := ow.offset

	headerPayload, err := header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("archive: marshaling directory header: %w", err)
	}
	if err := zstdframe.WriteSkippableFrame(ow, directoryHeaderNibble, headerPayload); err != nil {
		return fmt.Errorf("archive: writing directory header frame: %w", err)
	}

	if _, _, err := zstdframe.WriteStandardFrame(ow, directoryBytes, opts.compressionLevel()); err != nil {
		return fmt.Errorf("archive: writing directory frame: %w", err)
	}

	distance := uint64(ow.offset - headerFrameStart)
	if err := writeTrailer(ow, distance); err != nil {
		return fmt.Errorf("archive: writing eof trailer: %w", err)
	}

	return nil
}

// metaRecordSize reports the on-disk size of the Meta record for a
// header carrying the given algorithm codes and public key. Because
// the header's UncompressedLength field is a fixed-width 8-byte
// field, this size does not depend on what value it eventually holds,
// which is what makes the two-pass resolution in finishDirectory
// possible: the size is known before the final value is.
func metaRecordSize(header directory.Header) (int, error) {
	placeholder := header
	placeholder.Digest = make([]byte, digestSizeOrZero(header.DigestType))
	placeholder.Signature = make([]byte, signatureSizeOrZero(header.SignatureType))

	meta, err := directory.NewMeta(placeholder)
	if err != nil {
		return 0, fmt.Errorf("archive: building placeholder meta: %w", err)
	}
	var buf bytes.Buffer
	if _, err := directory.WriteRecord(&buf, directory.TagMeta, meta); err != nil {
		return 0, fmt.Errorf("archive: encoding placeholder meta: %w", err)
	}
	return buf.Len(), nil
}

func digestSizeOrZero(t integrity.DigestType) int {
	size, ok := t.Size()
	if !ok {
		return 0
	}
	return size
}

func signatureSizeOrZero(t integrity.SignatureType) int {
	size, ok := t.SignatureSize()
	if !ok {
		return 0
	}
	return size
}

// encodeRecordBody encodes every record except Meta, in the same
// order directory.Encode would, so that finishDirectory can measure
// and then prepend the Meta record once its contents are resolved.
func encodeRecordBody(d *directory.Directory) ([]byte, error) {
	var buf bytes.Buffer

	if d.WrittenAt != nil {
		if _, err := directory.WriteRecord(&buf, directory.TagWrittenAt, *d.WrittenAt); err != nil {
			return nil, err
		}
	}
	for _, record := range d.UserMetadata {
		if _, err := directory.WriteRecord(&buf, directory.TagUserMetadata, record); err != nil {
			return nil, err
		}
	}
	for _, record := range d.PriorVersions {
		if _, err := directory.WriteRecord(&buf, directory.TagPriorVersion, record); err != nil {
			return nil, err
		}
	}
	for _, entry := range d.Files {
		if _, err := directory.WriteRecord(&buf, directory.TagFileEntry, entry); err != nil {
			return nil, err
		}
	}
	for _, frame := range d.Frames {
		if _, err := directory.WriteRecord(&buf, directory.TagFrameEntry, frame); err != nil {
			return nil, err
		}
	}
	for _, attestation := range d.Attestations {
		if _, err := directory.WriteRecord(&buf, directory.TagAttestation, attestation); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func renderAdvisory(markdownSource string) (string, error) {
	if markdownSource == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdownSource), &buf); err != nil {
		return "", fmt.Errorf("archive: rendering advisory markdown: %w", err)
	}
	return buf.String(), nil
}

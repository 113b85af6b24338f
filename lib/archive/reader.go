// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/framestore"
	"github.com/zarcfile/zarc/lib/integrity"
	"github.com/zarcfile/zarc/lib/zstdframe"
)

// OpenOptions configures how Open verifies an archive's integrity.
type OpenOptions struct {
	// Insecure, when true, downgrades every verification failure
	// (Meta mismatch, directory digest/signature, frame signatures)
	// from a fatal error to a warning reported via Warnings, and
	// Open still returns a usable Reader. The default (false) makes
	// any such failure fatal.
	Insecure bool

	// Warnings receives every verification failure when Insecure is
	// set. It may be nil, in which case warnings are discarded.
	Warnings func(error)

	// ExternalLinkPolicy governs how Open treats symlink/hardlink
	// entries whose target lies outside the archive: a refused entry
	// fails Open, whether or not Insecure is set.
	// Defaults to directory.RefuseExternalLinks.
	ExternalLinkPolicy directory.ExternalLinkPolicy
}

func (o OpenOptions) warn(err error) error {
	if o.Insecure {
		if o.Warnings != nil {
			o.Warnings(err)
		}
		return nil
	}
	return err
}

// Reader is an opened, verified archive handle.
type Reader struct {
	r        io.ReaderAt
	fileSize int64

	header directory.Header
	dir    *directory.Directory
	store  *framestore.Store

	contentStart          int64
	directoryHeaderOffset int64

	verified bool
	closed   bool
}

// Open parses and verifies an archive's trailer, directory header,
// and directory, per opts. On success it returns a Reader ready for
// Files, ExtractFile, and (if verification fully succeeded) Append.
func Open(r io.ReaderAt, fileSize int64, opts OpenOptions) (*Reader, error) {
	zarcHeaderLength, err := readZarcHeader(r)
	if err != nil {
		return nil, err
	}

	unintendedFrame, err := nextFrame(r, zarcHeaderLength, fileSize)
	if err != nil {
		return nil, fmt.Errorf("archive: reading unintended-magic frame: %w", err)
	}
	contentStart := unintendedFrame.Offset + unintendedFrame.Length

	distance, err := readTrailer(r, fileSize)
	if err != nil {
		return nil, err
	}

	directoryHeaderOffset := fileSize - trailerSize - int64(distance)
	if directoryHeaderOffset < contentStart {
		return nil, fmt.Errorf("archive: directory header offset precedes content region")
	}

	headerPayload, headerFrameLength, err := zstdframe.ReadSkippableAt(r, directoryHeaderOffset, directoryHeaderNibble)
	if err != nil {
		return nil, fmt.Errorf("archive: reading directory header frame: %w", err)
	}
	header, err := directory.UnmarshalHeaderBinary(headerPayload)
	if err != nil {
		return nil, fmt.Errorf("archive: parsing directory header: %w", err)
	}

	zstdFrameOffset := directoryHeaderOffset + headerFrameLength
	zstdFrameLength := int64(distance) - headerFrameLength
	if zstdFrameLength <= 0 {
		return nil, fmt.Errorf("archive: directory frame has non-positive length")
	}
	section := io.NewSectionReader(r, zstdFrameOffset, zstdFrameLength)
	directoryBytes, err := zstdframe.ReadStandardFrame(section)
	if err != nil {
		return nil, fmt.Errorf("archive: decompressing directory: %w", err)
	}

	if uint64(len(directoryBytes)) != header.UncompressedLength {
		if err := opts.warn(&integrity.IntegrityError{Kind: integrity.DigestMismatch, Subject: "directory length"}); err != nil {
			return nil, err
		}
	}

	dir, err := directory.Decode(bytes.NewReader(directoryBytes))
	if err != nil {
		return nil, fmt.Errorf("archive: decoding directory: %w", err)
	}

	verified := true
	if err := dir.Meta.Verify(header); err != nil {
		if warnErr := opts.warn(err); warnErr != nil {
			return nil, warnErr
		}
		verified = false
	}

	digest, err := header.DigestType.Hash(directoryBytes)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(digest, header.Digest) {
		if warnErr := opts.warn(&integrity.IntegrityError{Kind: integrity.DigestMismatch, Subject: "directory"}); warnErr != nil {
			return nil, warnErr
		}
		verified = false
	}

	sigOK, err := header.SignatureType.Verify(header.PublicKey, header.Digest, header.Signature)
	if err != nil {
		return nil, err
	}
	if !sigOK {
		if warnErr := opts.warn(&integrity.IntegrityError{Kind: integrity.SignatureInvalid, Subject: "directory"}); warnErr != nil {
			return nil, warnErr
		}
		verified = false
	}

	for _, frame := range dir.Frames {
		frameOK, err := header.SignatureType.Verify(header.PublicKey, frame.Digest, frame.Signature)
		if err != nil {
			return nil, err
		}
		if !frameOK {
			if warnErr := opts.warn(&integrity.IntegrityError{Kind: integrity.SignatureInvalid, Subject: "frame"}); warnErr != nil {
				return nil, warnErr
			}
			verified = false
		}
	}

	for _, attestation := range dir.Attestations {
		attestationOK, err := header.SignatureType.Verify(header.PublicKey, attestation.Data, attestation.Signature)
		if err != nil {
			return nil, err
		}
		if !attestationOK {
			if warnErr := opts.warn(&integrity.IntegrityError{Kind: integrity.SignatureInvalid, Subject: "attestation"}); warnErr != nil {
				return nil, warnErr
			}
			verified = false
		}
	}

	for _, prior := range dir.PriorVersions {
		if _, err := directory.UnmarshalHeaderBinary(prior.Meta); err != nil {
			if warnErr := opts.warn(&integrity.IntegrityError{Kind: integrity.MetaMismatch, Subject: "prior-version"}); warnErr != nil {
				return nil, warnErr
			}
			verified = false
		}
	}

	policy := opts.ExternalLinkPolicy
	for _, file := range dir.Files {
		if file.Special == nil {
			continue
		}
		if err := policy.Check(file.Special.Kind); err != nil {
			return nil, err
		}
	}

	store, err := framestore.BuildFromDirectory(dir)
	if err != nil {
		return nil, err
	}

	return &Reader{
		r:                     r,
		fileSize:              fileSize,
		header:                header,
		dir:                   dir,
		store:                 store,
		contentStart:          contentStart,
		directoryHeaderOffset: directoryHeaderOffset,
		verified:              verified,
	}, nil
}

// nextFrame scans a single frame starting at offset, used to locate
// the unintended-magic frame immediately after the Zarc Header.
func nextFrame(r io.ReaderAt, offset, end int64) (zstdframe.Frame, error) {
	for frame, err := range zstdframe.ScanFrames(r, offset, end) {
		return frame, err
	}
	return zstdframe.Frame{}, fmt.Errorf("archive: no frame found at offset %d", offset)
}

// Files returns every File entry in the archive's current directory.
func (a *Reader) Files() []directory.FileEntry {
	return a.dir.Files
}

// Directory returns the decoded directory backing this Reader.
func (a *Reader) Directory() *directory.Directory {
	return a.dir
}

// ExtractFile returns the decompressed content of a regular file
// entry. It is an error to call this on a special (directory/symlink/
// hardlink) entry.
func (a *Reader) ExtractFile(entry directory.FileEntry) (io.ReadCloser, error) {
	if a.closed {
		return nil, &StateError{Kind: AlreadyClosed}
	}
	if !entry.IsRegular() {
		return nil, fmt.Errorf("archive: %s is not a regular file", directory.JoinedPath(entry.Path))
	}
	if len(entry.Digest) == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	frameEntry, ok := a.store.Lookup(entry.Digest)
	if !ok {
		return nil, &directory.DirectoryError{Kind: directory.DanglingDigest, Subject: directory.JoinedPath(entry.Path)}
	}

	section := io.NewSectionReader(a.r, int64(frameEntry.Offset), int64(frameEntry.FramedSize))
	content, err := zstdframe.ReadStandardFrame(section)
	if err != nil {
		return nil, fmt.Errorf("archive: decompressing %s: %w", directory.JoinedPath(entry.Path), err)
	}

	digest, err := a.header.DigestType.Hash(content)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(digest, entry.Digest) {
		return nil, &integrity.IntegrityError{Kind: integrity.DigestMismatch, Subject: directory.JoinedPath(entry.Path)}
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

// Close releases the Reader. It does not close the underlying
// io.ReaderAt, which the caller owns.
func (a *Reader) Close() error {
	a.closed = true
	return nil
}

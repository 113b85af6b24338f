// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"time"

	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/integrity"
)

// Append writes a new edition of src to w: every prior content frame
// is copied byte for byte and every directory entry is carried
// forward (re-signed under the new keypair, and stamped with the
// retired edition where it had none), a Prior-Version
// record points back at src's directory, and inputs are added under
// the new edition. src must have completed verification (Open without
// Insecure, or with every check having actually passed).
func Append(w io.Writer, src *Reader, inputs []Input, opts Options) error {
	if !src.verified {
		return &StateError{Kind: NotVerified}
	}

	keypair, err := integrity.GenerateKeypair(opts.SignatureType)
	if err != nil {
		return fmt.Errorf("archive: generating keypair: %w", err)
	}
	defer keypair.Zero()

	ow := newOffsetWriter(w, 0)

	prefix := io.NewSectionReader(src.r, 0, src.directoryHeaderOffset)
	if _, err := io.Copy(ow, prefix); err != nil {
		return fmt.Errorf("archive: copying prior archive content: %w", err)
	}

	newEdition := uint64(len(src.dir.PriorVersions)) + 1

	var oldWrittenAt time.Time
	if src.dir.WrittenAt != nil {
		oldWrittenAt = src.dir.WrittenAt.Time
	}

	// Entries already attributed to a specific historical edition stay
	// as they are; only entries still carrying edition-added=0 (the
	// "current" batch as of src) are now frozen to the edition this
	// append retires.
	files := append([]directory.FileEntry{}, src.dir.Files...)
	for i := range files {
		if files[i].EditionAdded == 0 {
			files[i].EditionAdded = newEdition
		}
	}

	// Every carried-over frame signature was made under src's keypair,
	// which no longer exists once this archive has its own; re-sign
	// each one under the new keypair so Open's frame-signature loop
	// verifies them against the new header's public key.
	frames := append([]directory.FrameEntry{}, src.dir.Frames...)
	for i := range frames {
		if frames[i].EditionAdded == 0 {
			frames[i].EditionAdded = newEdition
		}
		signature, err := keypair.Sign(frames[i].Digest)
		if err != nil {
			return fmt.Errorf("archive: re-signing frame digest: %w", err)
		}
		frames[i].Signature = signature
	}

	attestations := append([]directory.Attestation{}, src.dir.Attestations...)
	for i := range attestations {
		signature, err := keypair.Sign(attestations[i].Data)
		if err != nil {
			return fmt.Errorf("archive: re-signing attestation: %w", err)
		}
		attestations[i].Signature = signature
	}

	dir := &directory.Directory{
		WrittenAt:    &directory.WrittenAt{Time: time.Now().UTC()},
		UserMetadata: append(append([]directory.UserMetadataRecord{}, src.dir.UserMetadata...), opts.UserMetadata...),
		Files:        files,
		Frames:       frames,
		Attestations: attestations,
		PriorVersions: append(append([]directory.PriorVersion{}, src.dir.PriorVersions...), directory.PriorVersion{
			Edition:         newEdition,
			DirectoryOffset: uint64(src.directoryHeaderOffset),
			DirectoryDigest: src.header.Digest,
			Meta:            src.dir.Meta.HeaderSnapshot,
			WrittenAt:       oldWrittenAt,
		}),
	}
	if opts.Attestation != nil {
		attestation, err := signAttestation(opts.Attestation, keypair)
		if err != nil {
			return err
		}
		dir.Attestations = append(dir.Attestations, attestation)
	}

	for _, input := range inputs {
		// New entries are always added under the current edition (0);
		// only entries carried over from src are ever re-stamped to a
		// historical edition index, above.
		entry, err := packInput(ow, input, opts, keypair, src.store, dir, 0)
		if err != nil {
			return err
		}
		dir.Files = append(dir.Files, entry)
	}

	return finishDirectory(ow, dir, keypair, opts)
}

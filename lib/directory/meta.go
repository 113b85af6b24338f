// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"fmt"

	"github.com/zarcfile/zarc/lib/integrity"
)

// Meta is the Tag 1 record: first-wins, and required to be the first
// record in the directory's CBOR stream. It carries a snapshot of the
// directory header with its Digest and Signature fields zeroed
// (Header.WithZeroedCrypto), so that a reader can compare the Meta
// snapshot against the actual trailing header and detect a directory
// that was copied under a different signature, catching a downgrade
// or splice attack before content is trusted.
type Meta struct {
	HeaderSnapshot []byte `cbor:"header"`
}

// NewMeta builds a Meta record from a resolved header, zeroing its
// crypto fields before embedding it.
func NewMeta(header Header) (Meta, error) {
	snapshot, err := header.WithZeroedCrypto().MarshalBinary()
	if err != nil {
		return Meta{}, fmt.Errorf("directory: build meta snapshot: %w", err)
	}
	return Meta{HeaderSnapshot: snapshot}, nil
}

// Verify checks that the Meta record's embedded snapshot matches the
// actual header once the actual header's crypto fields are zeroed the
// same way. A mismatch means the directory bytes were altered after
// Meta was written, independent of whether the trailing signature
// itself still verifies.
func (m Meta) Verify(actual Header) error {
	snapshot, err := actual.WithZeroedCrypto().MarshalBinary()
	if err != nil {
		return fmt.Errorf("directory: build comparison snapshot: %w", err)
	}
	if len(snapshot) != len(m.HeaderSnapshot) {
		return &integrity.IntegrityError{Kind: integrity.MetaMismatch, Subject: "directory"}
	}
	for i := range snapshot {
		if snapshot[i] != m.HeaderSnapshot[i] {
			return &integrity.IntegrityError{Kind: integrity.MetaMismatch, Subject: "directory"}
		}
	}
	return nil
}

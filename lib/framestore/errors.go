// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framestore

import (
	"errors"
	"fmt"
)

// FrameStoreErrorKind identifies the specific store-invariant
// violation.
type FrameStoreErrorKind int

const (
	// DuplicateOffset means a second entry claimed an offset already
	// held by another digest.
	DuplicateOffset FrameStoreErrorKind = iota

	// DuplicateDigest means a second entry was inserted for a digest
	// already present, at a different offset. Re-inserting the exact
	// same (digest, offset) pair is not an error; it is the normal
	// outcome of re-scanning a directory that was already loaded.
	DuplicateDigest
)

func (kind FrameStoreErrorKind) String() string {
	switch kind {
	case DuplicateOffset:
		return "duplicate offset"
	case DuplicateDigest:
		return "duplicate digest"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// FrameStoreError reports that an insertion would have violated one
// of the store's invariants.
type FrameStoreError struct {
	Kind    FrameStoreErrorKind
	Subject string
}

func (err *FrameStoreError) Error() string {
	if err.Subject == "" {
		return fmt.Sprintf("framestore: %s", err.Kind)
	}
	return fmt.Sprintf("framestore: %s: %s", err.Kind, err.Subject)
}

// IsFrameStoreError reports whether err is a *FrameStoreError of the
// given kind.
func IsFrameStoreError(err error, kind FrameStoreErrorKind) bool {
	var storeError *FrameStoreError
	if !errors.As(err, &storeError) {
		return false
	}
	return storeError.Kind == kind
}

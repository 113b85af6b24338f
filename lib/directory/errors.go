// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"errors"
	"fmt"
)

// DirectoryErrorKind identifies the specific directory-structure
// violation.
type DirectoryErrorKind int

const (
	// MissingMeta means the record stream had no Meta record.
	MissingMeta DirectoryErrorKind = iota

	// MetaNotFirst means a record preceded the Meta record.
	MetaNotFirst

	// DuplicateFrameOffset means two Frame entries claimed the same
	// offset.
	DuplicateFrameOffset

	// InvalidPath means a File entry's name contained a "." or ".."
	// component.
	InvalidPath

	// UnknownEdition means a File or Frame entry's edition-added
	// value did not reference edition 0 or a known Prior-Version
	// index.
	UnknownEdition

	// DanglingDigest means a File entry's content digest did not
	// reference any Frame entry.
	DanglingDigest
)

func (kind DirectoryErrorKind) String() string {
	switch kind {
	case MissingMeta:
		return "missing meta record"
	case MetaNotFirst:
		return "meta record not first"
	case DuplicateFrameOffset:
		return "duplicate frame offset"
	case InvalidPath:
		return "invalid path"
	case UnknownEdition:
		return "unknown edition"
	case DanglingDigest:
		return "dangling digest reference"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// DirectoryError reports a structural violation of the directory
// contract: a missing or misplaced Meta record, a duplicate frame
// offset, an invalid pathname, or a reference to an unknown edition
// or digest.
type DirectoryError struct {
	Kind    DirectoryErrorKind
	Subject string
	Cause   error
}

func (err *DirectoryError) Error() string {
	if err.Subject == "" {
		return fmt.Sprintf("directory: %s", err.Kind)
	}
	return fmt.Sprintf("directory: %s: %s", err.Kind, err.Subject)
}

func (err *DirectoryError) Unwrap() error {
	return err.Cause
}

// IsDirectoryError reports whether err is a *DirectoryError of the
// given kind.
func IsDirectoryError(err error, kind DirectoryErrorKind) bool {
	var directoryError *DirectoryError
	if !errors.As(err, &directoryError) {
		return false
	}
	return directoryError.Kind == kind
}

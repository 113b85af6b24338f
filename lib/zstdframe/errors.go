// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package zstdframe

import (
	"errors"
	"fmt"
)

// FormatErrorKind identifies the specific way a byte stream failed to
// parse as a valid Zstandard envelope.
type FormatErrorKind int

const (
	// NotZstd means the bytes at the expected position do not begin
	// with any recognised Zstd magic number.
	NotZstd FormatErrorKind = iota

	// WrongFrameKind means a skippable frame was read successfully
	// but its nibble did not match what the caller expected.
	WrongFrameKind

	// Truncated means the reader ran out of bytes before a frame's
	// declared length was satisfied.
	Truncated

	// InvalidReservedBit means a standard frame's header descriptor
	// set the reserved bit, which every conforming encoder leaves
	// zero.
	InvalidReservedBit
)

// AnyFormatErrorKind matches any kind in IsFormatError.
const AnyFormatErrorKind FormatErrorKind = -1

func (kind FormatErrorKind) String() string {
	switch kind {
	case NotZstd:
		return "not zstd"
	case WrongFrameKind:
		return "wrong frame kind"
	case Truncated:
		return "truncated"
	case InvalidReservedBit:
		return "invalid reserved bit"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// FormatError reports a malformed Zstd envelope: bad magic, an
// unexpected skippable-frame nibble, a truncated frame, or an
// impossible length field.
type FormatError struct {
	Kind FormatErrorKind

	// Offset is the byte position within the stream where the
	// problem was detected, when known. -1 means not applicable.
	Offset int64

	// Want and Got record the expected and actual nibble for
	// WrongFrameKind; both are zero for other kinds.
	Want, Got byte

	Cause error
}

func (err *FormatError) Error() string {
	switch err.Kind {
	case WrongFrameKind:
		return fmt.Sprintf("zstdframe: at offset %d: wrong frame kind: want nibble %X, got %X", err.Offset, err.Want, err.Got)
	default:
		if err.Cause != nil {
			return fmt.Sprintf("zstdframe: at offset %d: %s: %v", err.Offset, err.Kind, err.Cause)
		}
		return fmt.Sprintf("zstdframe: at offset %d: %s", err.Offset, err.Kind)
	}
}

func (err *FormatError) Unwrap() error {
	return err.Cause
}

// IsFormatError reports whether err is a *FormatError, optionally of
// a specific kind. Pass AnyFormatErrorKind to match any kind.
func IsFormatError(err error, kind FormatErrorKind) bool {
	var formatError *FormatError
	if !errors.As(err, &formatError) {
		return false
	}
	return kind == AnyFormatErrorKind || formatError.Kind == kind
}

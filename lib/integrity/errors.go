// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integrity

import (
	"errors"
	"fmt"
)

// IntegrityErrorKind identifies the specific verification failure.
type IntegrityErrorKind int

const (
	// UnknownAlgorithm means a digest or signature type code has no
	// registered implementation.
	UnknownAlgorithm IntegrityErrorKind = iota

	// DisallowedAlgorithm means code 0 ("reserved") appeared on disk,
	// which MUST NOT happen for a validly written archive.
	DisallowedAlgorithm

	// DigestMismatch means a recorded digest did not match the hash
	// of the bytes it claims to describe.
	DigestMismatch

	// SignatureInvalid means a recorded signature did not verify
	// under the claimed public key.
	SignatureInvalid

	// MetaMismatch means the directory's Meta record did not equal
	// the directory header with its digest and signature fields
	// zeroed.
	MetaMismatch
)

func (kind IntegrityErrorKind) String() string {
	switch kind {
	case UnknownAlgorithm:
		return "unknown algorithm"
	case DisallowedAlgorithm:
		return "disallowed algorithm code 0"
	case DigestMismatch:
		return "digest mismatch"
	case SignatureInvalid:
		return "signature invalid"
	case MetaMismatch:
		return "meta record does not match header"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// IntegrityError reports a verification failure: a digest or
// signature mismatch, or an algorithm code this build does not
// implement.
type IntegrityError struct {
	Kind IntegrityErrorKind

	// Subject names what failed verification, e.g. "directory" or a
	// frame's digest in hex.
	Subject string

	Cause error
}

func (err *IntegrityError) Error() string {
	if err.Subject == "" {
		return fmt.Sprintf("integrity: %s", err.Kind)
	}
	return fmt.Sprintf("integrity: %s: %s", err.Subject, err.Kind)
}

func (err *IntegrityError) Unwrap() error {
	return err.Cause
}

// IsIntegrityError reports whether err is an *IntegrityError of the
// given kind.
func IsIntegrityError(err error, kind IntegrityErrorKind) bool {
	var integrityError *IntegrityError
	if !errors.As(err, &integrityError) {
		return false
	}
	return integrityError.Kind == kind
}

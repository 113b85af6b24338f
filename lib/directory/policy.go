// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"errors"
	"fmt"
)

// PolicyErrorKind identifies which caller-configurable policy
// rejected an operation.
type PolicyErrorKind int

const (
	// ExternalLinkRefused means a symlink or hardlink entry pointed
	// outside the archive and the active ExternalLinkPolicy refuses
	// such entries.
	ExternalLinkRefused PolicyErrorKind = iota

	// SizeLimitExceeded means a file or the directory itself exceeded
	// a caller-set limit.
	SizeLimitExceeded
)

func (kind PolicyErrorKind) String() string {
	switch kind {
	case ExternalLinkRefused:
		return "external link refused"
	case SizeLimitExceeded:
		return "size limit exceeded"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// PolicyError reports that an operation was refused by a
// caller-configurable policy rather than by the format itself.
type PolicyError struct {
	Kind    PolicyErrorKind
	Subject string
}

func (err *PolicyError) Error() string {
	if err.Subject == "" {
		return fmt.Sprintf("policy: %s", err.Kind)
	}
	return fmt.Sprintf("policy: %s: %s", err.Kind, err.Subject)
}

// IsPolicyError reports whether err is a *PolicyError of the given
// kind.
func IsPolicyError(err error, kind PolicyErrorKind) bool {
	var policyError *PolicyError
	if !errors.As(err, &policyError) {
		return false
	}
	return policyError.Kind == kind
}

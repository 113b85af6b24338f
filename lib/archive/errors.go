// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
)

// StateErrorKind identifies which handle-lifecycle rule was violated.
type StateErrorKind int

const (
	// AlreadyFinished means a write handle was used after it had
	// been finished. Pack and Append complete in a single call and
	// never return it.
	AlreadyFinished StateErrorKind = iota

	// NotVerified means Append was called on a Reader that had not
	// completed strict verification.
	NotVerified

	// AlreadyClosed means a method was called on a Reader after Close.
	AlreadyClosed
)

func (kind StateErrorKind) String() string {
	switch kind {
	case AlreadyFinished:
		return "writer already finished"
	case NotVerified:
		return "reader not verified"
	case AlreadyClosed:
		return "handle already closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(kind))
	}
}

// StateError reports that an Archive handle method was called outside
// the state it requires.
type StateError struct {
	Kind StateErrorKind
}

func (err *StateError) Error() string {
	return fmt.Sprintf("archive: %s", err.Kind)
}

// IsStateError reports whether err is a *StateError of the given kind.
func IsStateError(err error, kind StateErrorKind) bool {
	var stateError *StateError
	if !errors.As(err, &stateError) {
		return false
	}
	return stateError.Kind == kind
}

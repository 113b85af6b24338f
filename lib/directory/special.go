// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import "fmt"

// SpecialFileKind is the numeric code identifying a non-regular file
// entry's kind and, for links, whether its target is internal to the
// archive or points outside it.
type SpecialFileKind uint8

const (
	SpecialDirectory SpecialFileKind = 1

	SpecialSymlinkUnspecified SpecialFileKind = 10
	SpecialSymlinkInternal    SpecialFileKind = 11
	SpecialSymlinkExternalAbs SpecialFileKind = 12
	SpecialSymlinkExternalRel SpecialFileKind = 13

	SpecialHardlinkUnspecified SpecialFileKind = 20
	SpecialHardlinkInternal    SpecialFileKind = 21
	SpecialHardlinkExternal    SpecialFileKind = 22
)

func (kind SpecialFileKind) String() string {
	switch kind {
	case SpecialDirectory:
		return "directory"
	case SpecialSymlinkUnspecified:
		return "symlink"
	case SpecialSymlinkInternal:
		return "symlink-internal"
	case SpecialSymlinkExternalAbs:
		return "symlink-external-absolute"
	case SpecialSymlinkExternalRel:
		return "symlink-external-relative"
	case SpecialHardlinkUnspecified:
		return "hardlink"
	case SpecialHardlinkInternal:
		return "hardlink-internal"
	case SpecialHardlinkExternal:
		return "hardlink-external"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kind))
	}
}

// IsSymlink reports whether kind is one of the symlink variants.
func (kind SpecialFileKind) IsSymlink() bool {
	return kind >= SpecialSymlinkUnspecified && kind <= SpecialSymlinkExternalRel
}

// IsHardlink reports whether kind is one of the hardlink variants.
func (kind SpecialFileKind) IsHardlink() bool {
	return kind >= SpecialHardlinkUnspecified && kind <= SpecialHardlinkExternal
}

// IsExternal reports whether kind points outside the archive (an
// absolute or relative external symlink, or an external hardlink). A
// reader's policy MAY refuse to resolve these.
func (kind SpecialFileKind) IsExternal() bool {
	switch kind {
	case SpecialSymlinkExternalAbs, SpecialSymlinkExternalRel, SpecialHardlinkExternal:
		return true
	default:
		return false
	}
}

// SpecialFile describes a non-regular File entry: its kind, and for
// links, the target pathname.
type SpecialFile struct {
	Kind   SpecialFileKind `cbor:"kind"`
	Target string          `cbor:"target,omitempty"`
}

// ExternalLinkPolicy controls how a reader treats symlink/hardlink
// entries whose target lies outside the archive.
type ExternalLinkPolicy int

const (
	// RefuseExternalLinks is the default: SpecialFile.Kind values
	// 12, 13, and 22 cause PolicyError on read.
	RefuseExternalLinks ExternalLinkPolicy = iota

	// AllowExternalLinks permits external link targets to be
	// returned to the caller uninterpreted.
	AllowExternalLinks
)

// Check applies the policy to a special file kind, returning a
// *PolicyError if the kind is external and the policy refuses it.
func (policy ExternalLinkPolicy) Check(kind SpecialFileKind) error {
	if policy == AllowExternalLinks {
		return nil
	}
	if kind.IsExternal() {
		return &PolicyError{Kind: ExternalLinkRefused, Subject: kind.String()}
	}
	return nil
}

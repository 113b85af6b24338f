// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hostmeta

import (
	"fmt"
	"os"
	"time"

	"github.com/zarcfile/zarc/lib/directory"
)

// Info carries the metadata fields a directory.FileEntry needs,
// resolved from a real file on disk.
type Info struct {
	Special    *directory.SpecialFile
	Owner      directory.PosixOwner
	Group      directory.PosixOwner
	Mode       uint32
	Size       int64
	Timestamps directory.Timestamps
	Attributes map[string]string
	Xattrs     map[string][]byte
}

// Describe stats path (without following a trailing symlink) and
// resolves every platform-specific field it can. Directories and
// symlinks get Special populated and a zero Size; every other file,
// including devices, FIFOs and sockets, is treated as a regular file:
// a nil Special and its stat size in Size.
func Describe(path string) (Info, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Info{}, fmt.Errorf("hostmeta: stating %s: %w", path, err)
	}

	info := Info{
		Mode: uint32(fi.Mode().Perm()),
		Timestamps: directory.Timestamps{
			ModifiedAt: timePtr(fi.ModTime()),
		},
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return Info{}, fmt.Errorf("hostmeta: reading symlink %s: %w", path, err)
		}
		info.Special = &directory.SpecialFile{
			Kind:   directory.SpecialSymlinkUnspecified,
			Target: target,
		}
	case fi.IsDir():
		info.Special = &directory.SpecialFile{Kind: directory.SpecialDirectory}
	default:
		info.Size = fi.Size()
	}

	if err := fillPlatformInfo(path, fi, &info); err != nil {
		return Info{}, err
	}

	return info, nil
}

// Apply restores the metadata recorded in entry onto the file or
// directory already written at path. Ownership and attribute changes
// are best-effort: an unpack running as an unprivileged user cannot
// chown to another uid, and that is not a reason to abort the unpack.
func Apply(path string, entry directory.FileEntry) error {
	if entry.Special == nil {
		if err := os.Chmod(path, os.FileMode(entry.Mode&0o7777)); err != nil {
			return fmt.Errorf("hostmeta: chmod %s: %w", path, err)
		}
	}
	if err := applyOwnership(path, entry); err != nil {
		return err
	}
	if err := applyXattrs(path, entry); err != nil {
		return err
	}
	if err := applyAttributes(path, entry); err != nil {
		return err
	}
	return applyTimestamps(path, entry)
}

func applyTimestamps(path string, entry directory.FileEntry) error {
	if entry.Timestamps.ModifiedAt == nil {
		return nil
	}
	atime := *entry.Timestamps.ModifiedAt
	if entry.Timestamps.AccessedAt != nil {
		atime = *entry.Timestamps.AccessedAt
	}
	if err := os.Chtimes(path, atime, *entry.Timestamps.ModifiedAt); err != nil {
		return fmt.Errorf("hostmeta: setting timestamps on %s: %w", path, err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// ToFileEntry builds a directory.FileEntry from a resolved Info,
// filling Special, Owner, Group, Mode, Timestamps, Attributes and
// Xattrs. Path, Digest, Size, EditionAdded and the per-entry
// UserMetadata are left zero for the caller to set.
func (info Info) ToFileEntry() directory.FileEntry {
	return directory.FileEntry{
		Special:    info.Special,
		Owner:      info.Owner,
		Group:      info.Group,
		Mode:       info.Mode,
		Timestamps: info.Timestamps,
		Attributes: info.Attributes,
		Xattrs:     info.Xattrs,
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package hostmeta

import (
	"os"
	"syscall"

	"github.com/zarcfile/zarc/lib/directory"
)

// Windows attribute bits, per GetFileAttributes. Named independently
// of syscall's own constants so the win32.* attribute keys this file
// writes stay stable regardless of what the syscall package exports.
const (
	winAttrReadonly = 0x1
	winAttrHidden   = 0x2
	winAttrSystem   = 0x4
)

// fillPlatformInfo resolves Windows file attributes, grounded on
// riannucci-sarchive's attrs_windows.go split; there is no POSIX
// owner/group concept to populate on this platform.
func fillPlatformInfo(path string, fi os.FileInfo, info *Info) error {
	attrs, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return nil
	}

	info.Attributes = map[string]string{}
	if attrs.FileAttributes&winAttrHidden != 0 {
		info.Attributes["win32.hidden"] = "true"
	}
	if attrs.FileAttributes&winAttrSystem != 0 {
		info.Attributes["win32.system"] = "true"
	}
	if attrs.FileAttributes&winAttrReadonly != 0 {
		info.Attributes["win32.readonly"] = "true"
	}
	return nil
}

func applyOwnership(path string, entry directory.FileEntry) error {
	return nil
}

func applyXattrs(path string, entry directory.FileEntry) error {
	return nil
}

// applyAttributes restores the win32.hidden and win32.system
// attributes this package records, mirroring
// riannucci-sarchive's setWinFileAttributes.
func applyAttributes(path string, entry directory.FileEntry) error {
	var attrs uint32
	if entry.Attributes["win32.hidden"] == "true" {
		attrs |= winAttrHidden
	}
	if entry.Attributes["win32.system"] == "true" {
		attrs |= winAttrSystem
	}
	if attrs == 0 {
		return nil
	}
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	return syscall.SetFileAttributes(p, attrs)
}

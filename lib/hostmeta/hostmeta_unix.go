// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package hostmeta

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/zarcfile/zarc/lib/directory"
)

// fillPlatformInfo resolves owner/group and extended attributes via
// the POSIX stat structure and golang.org/x/sys/unix, grounded on
// riannucci-sarchive's attrs_posix.go split (there a no-op; here the
// POSIX half of the split does the real work).
func fillPlatformInfo(path string, fi os.FileInfo, info *Info) error {
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}

	uid := uint32(stat.Uid)
	info.Owner = directory.PosixOwner{ID: &uid}
	if u, err := user.LookupId(strconv.FormatUint(uint64(stat.Uid), 10)); err == nil {
		info.Owner.Name = u.Username
		info.Owner.HasName = true
	}

	gid := uint32(stat.Gid)
	info.Group = directory.PosixOwner{ID: &gid}
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(stat.Gid), 10)); err == nil {
		info.Group.Name = g.Name
		info.Group.HasName = true
	}

	info.Attributes = map[string]string{
		"linux.nlink": strconv.FormatUint(uint64(stat.Nlink), 10),
	}

	if info.Special != nil {
		return nil
	}
	xattrs, err := readXattrs(path)
	if err != nil {
		return err
	}
	if len(xattrs) > 0 {
		info.Xattrs = xattrs
	}
	return nil
}

func readXattrs(path string) (map[string][]byte, error) {
	size, err := unix.Listxattr(path, nil)
	if err != nil {
		if err == unix.ENOTSUP || err == unix.EOPNOTSUPP {
			return nil, nil
		}
		return nil, fmt.Errorf("hostmeta: listing xattrs on %s: %w", path, err)
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	n, err := unix.Listxattr(path, buf)
	if err != nil {
		return nil, fmt.Errorf("hostmeta: listing xattrs on %s: %w", path, err)
	}

	result := make(map[string][]byte)
	for _, name := range splitXattrNames(buf[:n]) {
		valSize, err := unix.Getxattr(path, name, nil)
		if err != nil {
			continue
		}
		val := make([]byte, valSize)
		n, err := unix.Getxattr(path, name, val)
		if err != nil {
			continue
		}
		result[name] = val[:n]
	}
	return result, nil
}

// splitXattrNames splits the NUL-delimited name list Listxattr
// returns into individual attribute names.
func splitXattrNames(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == 0 {
			if i > start {
				names = append(names, string(buf[start:i]))
			}
			start = i + 1
		}
	}
	return names
}

func applyOwnership(path string, entry directory.FileEntry) error {
	uid, gid := -1, -1
	if entry.Owner.ID != nil {
		uid = int(*entry.Owner.ID)
	}
	if entry.Group.ID != nil {
		gid = int(*entry.Group.ID)
	}
	if uid == -1 && gid == -1 {
		return nil
	}
	_ = os.Lchown(path, uid, gid)
	return nil
}

func applyXattrs(path string, entry directory.FileEntry) error {
	for name, value := range entry.Xattrs {
		_ = unix.Setxattr(path, name, value, 0)
	}
	return nil
}

// applyAttributes is a no-op on POSIX platforms: the win32.* keys
// this package writes have no POSIX equivalent worth restoring.
func applyAttributes(path string, entry directory.FileEntry) error {
	return nil
}

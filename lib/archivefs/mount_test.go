// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archivefs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/integrity"
)

func staticContent(data []byte) archive.ContentOpener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

func testArchive(t *testing.T) *archive.Reader {
	t.Helper()

	inputs := []archive.Input{
		{
			Path: []directory.PathComponent{directory.Text("dir"), directory.Text("a.txt")},
			Open: staticContent([]byte("alpha")),
		},
		{
			Path: []directory.PathComponent{directory.Text("b.txt")},
			Open: staticContent([]byte("beta")),
		},
		{
			Path:    []directory.PathComponent{directory.Text("link.txt")},
			Special: &directory.SpecialFile{Kind: directory.SpecialSymlinkInternal, Target: "b.txt"},
		},
	}

	var buf bytes.Buffer
	if err := archive.Pack(&buf, inputs, archive.Options{
		DigestType:    integrity.DigestBLAKE3,
		SignatureType: integrity.SignatureEd25519,
	}); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	reader, err := archive.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()), archive.OpenOptions{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return reader
}

func TestInsertBuildsNestedDirectories(t *testing.T) {
	reader := testArchive(t)
	root := newDirNode()
	for _, entry := range reader.Files() {
		insert(root, entry, reader)
	}

	dirChild := root.GetChild("dir")
	if dirChild == nil {
		t.Fatal("expected a child named \"dir\"")
	}
	if _, ok := dirChild.Operations().(*dirNode); !ok {
		t.Fatalf("\"dir\" operations = %T, want *dirNode", dirChild.Operations())
	}

	fileChild := dirChild.GetChild("a.txt")
	if fileChild == nil {
		t.Fatal("expected \"dir/a.txt\" to exist")
	}
	if _, ok := fileChild.Operations().(*fileNode); !ok {
		t.Fatalf("\"dir/a.txt\" operations = %T, want *fileNode", fileChild.Operations())
	}
}

func TestInsertBuildsSymlink(t *testing.T) {
	reader := testArchive(t)
	root := newDirNode()
	for _, entry := range reader.Files() {
		insert(root, entry, reader)
	}

	linkChild := root.GetChild("link.txt")
	if linkChild == nil {
		t.Fatal("expected \"link.txt\" to exist")
	}
	node, ok := linkChild.Operations().(*linkNode)
	if !ok {
		t.Fatalf("\"link.txt\" operations = %T, want *linkNode", linkChild.Operations())
	}
	if node.target != "b.txt" {
		t.Errorf("target = %q, want %q", node.target, "b.txt")
	}
}

func TestFileNodeReadLoadsContentOnDemand(t *testing.T) {
	reader := testArchive(t)
	var entry directory.FileEntry
	for _, candidate := range reader.Files() {
		if directory.JoinedPath(candidate.Path) == "b.txt" {
			entry = candidate
		}
	}
	if entry.Path == nil {
		t.Fatal("expected to find b.txt in the archive")
	}

	node := &fileNode{archive: reader, entry: entry}
	if node.loaded {
		t.Fatal("expected content to be unloaded before Read")
	}

	dest := make([]byte, 16)
	result, errno := node.Read(context.Background(), nil, dest, 0)
	if errno != 0 {
		t.Fatalf("Read errno = %v", errno)
	}
	got, status := result.Bytes(dest)
	if status != 0 {
		t.Fatalf("Bytes() status = %v", status)
	}
	if string(got) != "beta" {
		t.Errorf("content = %q, want %q", got, "beta")
	}
	if !node.loaded {
		t.Error("expected content to be loaded after Read")
	}
}

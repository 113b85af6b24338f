// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func sampleDirectory(t *testing.T) *Directory {
	t.Helper()

	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	writtenAt := WrittenAt{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	digest := bytes.Repeat([]byte{0x11}, 32)

	return &Directory{
		Meta:      meta,
		WrittenAt: &writtenAt,
		UserMetadata: []UserMetadataRecord{
			{Key: "builder", Value: []byte("zarc-test")},
		},
		Files: []FileEntry{
			{
				Path:   []PathComponent{Text("hello.txt")},
				Size:   11,
				Digest: digest,
			},
			{
				Path:    []PathComponent{Text("bin"), Text("tool")},
				Special: &SpecialFile{Kind: SpecialSymlinkInternal, Target: "../usr/bin/tool"},
			},
		},
		Frames: []FrameEntry{
			{Digest: digest, Offset: 128, FramedSize: 64, UncompressedSize: 11},
		},
	}
}

func TestDirectoryEncodeDecodeRoundTrip(t *testing.T) {
	d := sampleDirectory(t)

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Files) != len(d.Files) {
		t.Fatalf("got %d files, want %d", len(decoded.Files), len(d.Files))
	}
	if len(decoded.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(decoded.Frames))
	}
	if decoded.WrittenAt == nil || !decoded.WrittenAt.Time.Equal(d.WrittenAt.Time) {
		t.Fatalf("written-at did not round-trip: %+v", decoded.WrittenAt)
	}
	if len(decoded.UserMetadata) != 1 || decoded.UserMetadata[0].Key != "builder" {
		t.Fatalf("user metadata did not round-trip: %+v", decoded.UserMetadata)
	}
}

func TestDirectoryDecodeRejectsMissingMeta(t *testing.T) {
	var buf bytes.Buffer
	record := WrittenAt{Time: time.Now()}
	if _, err := WriteRecord(&buf, TagWrittenAt, record); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	_, err := Decode(&buf)
	if err == nil {
		t.Fatal("expected error for missing meta")
	}
	if !IsDirectoryError(err, MetaNotFirst) {
		t.Fatalf("expected MetaNotFirst, got %v", err)
	}
}

func TestDirectoryDecodeMetaFirstWins(t *testing.T) {
	h1 := sampleHeader()
	meta1, err := NewMeta(h1)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}
	h2 := sampleHeader()
	h2.UncompressedLength = 9999
	meta2, err := NewMeta(h2)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	var buf bytes.Buffer
	if _, err := WriteRecord(&buf, TagMeta, meta1); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagMeta, meta2); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded.Meta.HeaderSnapshot, meta1.HeaderSnapshot) {
		t.Fatal("expected first Meta record to win")
	}
}

func TestDirectoryDecodeWrittenAtLastWins(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	first := WrittenAt{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := WrittenAt{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	if _, err := WriteRecord(&buf, TagMeta, meta); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagWrittenAt, first); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagWrittenAt, second); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.WrittenAt == nil || !decoded.WrittenAt.Time.Equal(second.Time) {
		t.Fatalf("expected last Written-At to win, got %+v", decoded.WrittenAt)
	}
}

func TestDirectoryDecodeRejectsDuplicateFrameOffset(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	digestA := bytes.Repeat([]byte{0x01}, 32)
	digestB := bytes.Repeat([]byte{0x02}, 32)

	var buf bytes.Buffer
	if _, err := WriteRecord(&buf, TagMeta, meta); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagFrameEntry, FrameEntry{Digest: digestA, Offset: 100, FramedSize: 10, UncompressedSize: 10}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagFrameEntry, FrameEntry{Digest: digestB, Offset: 100, FramedSize: 10, UncompressedSize: 10}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	_, err = Decode(&buf)
	if err == nil {
		t.Fatal("expected error for duplicate frame offset")
	}
	if !IsDirectoryError(err, DuplicateFrameOffset) {
		t.Fatalf("expected DuplicateFrameOffset, got %v", err)
	}
}

func TestDirectoryDecodeRejectsInvalidPath(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	var buf bytes.Buffer
	if _, err := WriteRecord(&buf, TagMeta, meta); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagFileEntry, FileEntry{Path: []PathComponent{Text("..")}}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	_, err = Decode(&buf)
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
	if !IsDirectoryError(err, InvalidPath) {
		t.Fatalf("expected InvalidPath, got %v", err)
	}
}

func TestDirectoryDecodeRejectsDanglingDigest(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	var buf bytes.Buffer
	if _, err := WriteRecord(&buf, TagMeta, meta); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if _, err := WriteRecord(&buf, TagFileEntry, FileEntry{
		Path:   []PathComponent{Text("orphan.txt")},
		Digest: bytes.Repeat([]byte{0x99}, 32),
	}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}

	_, err = Decode(&buf)
	if err == nil {
		t.Fatal("expected error for dangling digest")
	}
	if !IsDirectoryError(err, DanglingDigest) {
		t.Fatalf("expected DanglingDigest, got %v", err)
	}
}

func TestDirectoryDecodeStopsAtEOF(t *testing.T) {
	d := sampleDirectory(t)
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r := bytes.NewReader(buf.Bytes())
	_, err := Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		t.Fatalf("expected reader fully consumed, err = %v", err)
	}
}

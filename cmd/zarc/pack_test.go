// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	dir := t.TempDir()

	sourceDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(sourceDir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "nested", "b.txt"), []byte("beta"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifestPath := filepath.Join(dir, "manifest.yaml")
	manifestContent := `
advisory_markdown: "# test archive"
entries:
  - source: src/a.txt
    path: a.txt
  - source: src/nested/b.txt
    path: nested/b.txt
`
	if err := os.WriteFile(manifestPath, []byte(manifestContent), 0o644); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(dir, "out.zarc")
	if err := runPack(manifestPath, archivePath, DefaultConfig(), discardLogger()); err != nil {
		t.Fatalf("runPack: %v", err)
	}

	outputDir := filepath.Join(dir, "extracted")
	if err := runUnpack(archivePath, outputDir, false, discardLogger()); err != nil {
		t.Fatalf("runUnpack: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(outputDir, "a.txt"))
	if err != nil {
		t.Fatalf("reading extracted a.txt: %v", err)
	}
	if string(got) != "alpha" {
		t.Errorf("a.txt content = %q, want %q", got, "alpha")
	}

	got, err = os.ReadFile(filepath.Join(outputDir, "nested", "b.txt"))
	if err != nil {
		t.Fatalf("reading extracted nested/b.txt: %v", err)
	}
	if string(got) != "beta" {
		t.Errorf("nested/b.txt content = %q, want %q", got, "beta")
	}
}

func TestRunListFilesFiltersByGlob(t *testing.T) {
	dir := t.TempDir()

	sourceDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "keep.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "skip.bin"), []byte("skip"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifestPath := filepath.Join(dir, "manifest.yaml")
	manifestContent := `
entries:
  - source: src/keep.txt
    path: keep.txt
  - source: src/skip.bin
    path: skip.bin
`
	if err := os.WriteFile(manifestPath, []byte(manifestContent), 0o644); err != nil {
		t.Fatal(err)
	}

	archivePath := filepath.Join(dir, "out.zarc")
	if err := runPack(manifestPath, archivePath, DefaultConfig(), discardLogger()); err != nil {
		t.Fatalf("runPack: %v", err)
	}

	if err := runListFiles(archivePath, "*.txt", true, DefaultConfig()); err != nil {
		t.Fatalf("runListFiles: %v", err)
	}
}

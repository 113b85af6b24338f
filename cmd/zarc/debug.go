// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/zstdframe"
)

func debugCommand(globalConfig *Config) *cli.Command {
	var explain bool

	fs := pflag.NewFlagSet("debug", pflag.ContinueOnError)
	fs.BoolVar(&explain, "explain", false, "print the decompressed unintended-magic frame and the HTML advisory text frame that follows it")

	return &cli.Command{
		Name:    "debug",
		Summary: "Dump an archive's frame and directory structure",
		Description: `Dump every frame's kind, offset, and length, then the number of
file, frame, and attestation records in the directory. Use --explain
to print the decompressed content of the archive's unintended-magic
frame (the Zarc Header bytes) and of the advisory text frame written
right after it (stored as HTML), the note a naive decompressor would
see.`,
		Usage: "zarc debug <archive.zarc> [--explain]",
		Flags: func() *pflag.FlagSet { return fs },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: zarc debug <archive.zarc> [--explain]")
			}
			return runDebug(args[0], explain, *globalConfig)
		},
	}
}

func runDebug(archivePath string, explain bool, cfg Config) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", archivePath, err)
	}

	if err := dumpFrames(f, stat.Size()); err != nil {
		return err
	}

	reader, err := archive.Open(f, stat.Size(), archive.OpenOptions{Insecure: true})
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	dir := reader.Directory()
	fmt.Printf("\nfiles: %d  frames: %d  attestations: %d\n",
		len(dir.Files), len(dir.Frames), len(dir.Attestations))

	if explain {
		return explainAdvisory(f, stat.Size(), dir)
	}
	return nil
}

// dumpFrames scans every frame in the file and prints its kind,
// offset, and length, highlighted the way a CBOR diagnostic dump
// would be: a label/value notation colorized by a YAML lexer, chosen
// because this report's shape (key: value per line) matches YAML far
// more closely than any general-purpose diff or hex format chroma
// ships a lexer for.
func dumpFrames(f *os.File, fileSize int64) error {
	var report []byte
	for frame, err := range zstdframe.ScanFrames(f, 0, fileSize) {
		if err != nil {
			return fmt.Errorf("scanning frames: %w", err)
		}
		line := fmt.Sprintf("- offset: %d\n  length: %d\n  kind: %s\n", frame.Offset, frame.Length, frameKindName(frame))
		report = append(report, line...)
	}
	return quick.Highlight(os.Stdout, string(report), "yaml", "terminal256", "monokai")
}

func frameKindName(frame zstdframe.Frame) string {
	if frame.Kind == zstdframe.KindSkippable {
		return fmt.Sprintf("skippable(nibble=%d)", frame.Nibble)
	}
	return "standard"
}

// explainAdvisory decompresses the unintended-magic frame (the first
// standard frame in the file) and, when the frame right after it is a
// standard frame that no Frame entry claims, that advisory text frame
// too, printing each verbatim: the Zarc Header payload followed by the
// HTML advisory text, what a naive decompressor unaware of Zarc's own
// framing would see.
func explainAdvisory(f *os.File, fileSize int64, dir *directory.Directory) error {
	claimed := make(map[uint64]bool, len(dir.Frames))
	for _, entry := range dir.Frames {
		claimed[entry.Offset] = true
	}
	printed := false
	for frame, err := range zstdframe.ScanFrames(f, 0, fileSize) {
		if err != nil {
			return fmt.Errorf("scanning frames: %w", err)
		}
		if printed && (frame.Kind != zstdframe.KindStandard || claimed[uint64(frame.Offset)]) {
			return nil
		}
		if frame.Kind != zstdframe.KindStandard {
			continue
		}
		section := io.NewSectionReader(f, frame.Offset, frame.Length)
		content, err := zstdframe.ReadStandardFrame(section)
		if err != nil {
			return fmt.Errorf("decompressing frame at offset %d: %w", frame.Offset, err)
		}
		fmt.Println(string(content))
		if printed {
			return nil
		}
		printed = true
	}
	if printed {
		return nil
	}
	return fmt.Errorf("no content frame found")
}

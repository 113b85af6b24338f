// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/hostmeta"
)

func unpackCommand(globalConfig *Config) *cli.Command {
	var insecure bool

	fs := pflag.NewFlagSet("unpack", pflag.ContinueOnError)
	fs.BoolVar(&insecure, "insecure", false, "downgrade verification failures to warnings and extract anyway")

	return &cli.Command{
		Name:    "unpack",
		Summary: "Extract every file in an archive to a directory",
		Description: `Extract every File entry in an archive to a directory tree,
restoring POSIX ownership, mode, timestamps, and xattrs on a
best-effort basis. Fails closed on a verification failure unless
--insecure is given.`,
		Usage: "zarc unpack <archive.zarc> <output-dir>",
		Flags: func() *pflag.FlagSet { return fs },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: zarc unpack <archive.zarc> <output-dir>")
			}
			return runUnpack(args[0], args[1], insecure || globalConfig.Insecure, logger)
		},
	}
}

func runUnpack(archivePath, outputDir string, insecure bool, logger *slog.Logger) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stating %s: %w", archivePath, err)
	}

	reader, err := archive.Open(f, stat.Size(), archive.OpenOptions{
		Insecure: insecure,
		Warnings: func(err error) { logger.Warn("verification warning", "error", err) },
	})
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	files := reader.Files()
	// Directories must be created before the files and symlinks they
	// contain; a stable sort by path depth ensures parents precede
	// children regardless of the directory's own record order.
	sortByPathDepth(files)

	for _, entry := range files {
		destPath := filepath.Join(outputDir, directory.JoinedPath(entry.Path))

		switch {
		case entry.Special == nil:
			if err := extractRegularFile(reader, entry, destPath); err != nil {
				return err
			}
		case entry.Special.Kind == directory.SpecialDirectory:
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", destPath, err)
			}
		case entry.Special.Kind.IsSymlink():
			if entry.Special.Kind.IsExternal() {
				logger.Warn("skipping external symlink", "path", directory.JoinedPath(entry.Path))
				continue
			}
			if err := os.Symlink(entry.Special.Target, destPath); err != nil {
				return fmt.Errorf("creating symlink %s: %w", destPath, err)
			}
		default:
			logger.Warn("skipping unsupported entry", "path", directory.JoinedPath(entry.Path), "kind", entry.Special.Kind.String())
			continue
		}

		if err := hostmeta.Apply(destPath, entry); err != nil {
			logger.Warn("restoring metadata failed", "path", destPath, "error", err)
		}
	}

	logger.Info("archive extracted", "path", archivePath, "dest", outputDir, "files", len(files))
	return nil
}

func extractRegularFile(reader *archive.Reader, entry directory.FileEntry, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", destPath, err)
	}

	content, err := reader.ExtractFile(entry)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", directory.JoinedPath(entry.Path), err)
	}
	defer content.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(entry.Mode|0o600))
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	return nil
}

// sortByPathDepth stable-sorts entries so that every directory
// appears before anything nested inside it.
func sortByPathDepth(entries []directory.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Path) < len(entries[j].Path)
	})
}

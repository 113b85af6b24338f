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
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/zarcfile/zarc/cmd/zarc/cli"
	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/hostmeta"
)

func packCommand(globalConfig *Config) *cli.Command {
	return &cli.Command{
		Name:    "pack",
		Summary: "Build a new archive from a pack manifest",
		Description: `Build a new archive from a YAML pack manifest: a list of source
files on disk and the archive path each should be stored under.
Does not walk a directory tree — every entry is named explicitly,
so the resulting archive is reproducible from the manifest alone.`,
		Usage: "zarc pack <manifest.yaml> <output.zarc>",
		Examples: []cli.Example{
			{Description: "Pack the files named in release.yaml", Command: "zarc pack release.yaml release.zarc"},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: zarc pack <manifest.yaml> <output.zarc>")
			}
			return runPack(args[0], args[1], *globalConfig, logger)
		},
	}
}

func runPack(manifestPath, outputPath string, cfg Config, logger *slog.Logger) error {
	manifest, err := LoadPackManifest(manifestPath)
	if err != nil {
		return err
	}
	manifestDir := filepath.Dir(manifestPath)

	digestType, err := cfg.digestType()
	if err != nil {
		return err
	}
	signatureType, err := cfg.signatureType()
	if err != nil {
		return err
	}

	inputs := make([]archive.Input, 0, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		sourcePath := entry.SourcePath
		if !filepath.IsAbs(sourcePath) {
			sourcePath = filepath.Join(manifestDir, sourcePath)
		}

		info, err := hostmeta.Describe(sourcePath)
		if err != nil {
			return err
		}

		fileEntry := info.ToFileEntry()
		input := archive.Input{
			Path:         splitArchivePath(entry.ArchivePath),
			Special:      fileEntry.Special,
			Owner:        fileEntry.Owner,
			Group:        fileEntry.Group,
			Mode:         fileEntry.Mode,
			Timestamps:   fileEntry.Timestamps,
			Attributes:   fileEntry.Attributes,
			Xattrs:       fileEntry.Xattrs,
			UserMetadata: stringMapToBytes(entry.UserMetadata),
		}
		if input.Special == nil {
			input.Open = openerFor(sourcePath)
		}

		logger.Debug("packing entry", "source", sourcePath, "path", entry.ArchivePath)
		inputs = append(inputs, input)
	}

	userMetadata := make([]directory.UserMetadataRecord, 0, len(manifest.UserMetadata))
	for key, value := range manifest.UserMetadata {
		userMetadata = append(userMetadata, directory.UserMetadataRecord{Key: key, Value: []byte(value)})
	}

	out, err := os.CreateTemp(filepath.Dir(outputPath), ".zarc-pack-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", outputPath, err)
	}
	defer os.Remove(out.Name()) // fails harmlessly once renamed into place
	defer out.Close()

	err = archive.Pack(out, inputs, archive.Options{
		DigestType:       digestType,
		SignatureType:    signatureType,
		CompressionLevel: zstd.EncoderLevel(cfg.CompressionLevel),
		AdvisoryMarkdown: manifest.AdvisoryMarkdown,
		UserMetadata:     userMetadata,
	})
	if err != nil {
		return fmt.Errorf("packing %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", out.Name(), err)
	}
	if err := os.Rename(out.Name(), outputPath); err != nil {
		return fmt.Errorf("renaming into %s: %w", outputPath, err)
	}

	logger.Info("archive written", "path", outputPath, "entries", len(inputs))
	return nil
}

// openerFor returns an archive.ContentOpener that reopens path each
// time it is called, so packInput's two independent passes (hash,
// then compress) each get an unconsumed reader.
func openerFor(path string) archive.ContentOpener {
	return func() (io.ReadCloser, error) {
		return os.Open(path)
	}
}

// splitArchivePath turns a manifest's slash-separated archive path
// into the component list File entries are keyed by.
func splitArchivePath(path string) []directory.PathComponent {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	components := make([]directory.PathComponent, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		components = append(components, directory.Text(part))
	}
	return components
}

func stringMapToBytes(m map[string]string) map[string][]byte {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out
}

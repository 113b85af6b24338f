// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PackManifest is the YAML file "zarc pack" reads to learn what to
// archive. It names files explicitly rather than walking a directory:
// a manifest is reproducible and reviewable in a way that "whatever
// happens to be on disk right now" is not.
type PackManifest struct {
	// AdvisoryMarkdown, when set, becomes the archive's human-readable
	// advisory text, rendered to HTML and embedded in the
	// unintended-magic frame.
	AdvisoryMarkdown string `yaml:"advisory_markdown"`

	// UserMetadata is a flat key/value map copied onto the archive's
	// User-Metadata records.
	UserMetadata map[string]string `yaml:"user_metadata"`

	Entries []ManifestEntry `yaml:"entries"`
}

// ManifestEntry names one source file and the archive path it is
// stored under. SourcePath is resolved relative to the manifest's own
// directory unless it is absolute.
type ManifestEntry struct {
	SourcePath   string            `yaml:"source"`
	ArchivePath  string            `yaml:"path"`
	UserMetadata map[string]string `yaml:"user_metadata"`
}

// LoadPackManifest reads and parses a pack manifest file.
func LoadPackManifest(path string) (*PackManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var manifest PackManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	for i, entry := range manifest.Entries {
		if entry.SourcePath == "" {
			return nil, fmt.Errorf("manifest %s: entries[%d]: source is required", path, i)
		}
		if entry.ArchivePath == "" {
			return nil, fmt.Errorf("manifest %s: entries[%d]: path is required", path, i)
		}
	}
	return &manifest, nil
}

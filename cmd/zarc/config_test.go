// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zarcfile/zarc/lib/integrity"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.jsonc"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigParsesJSONCWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	content := `{
  // prefer a higher compression level for archival builds
  "compression_level": 19,
  "insecure": true,
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.CompressionLevel != 19 {
		t.Errorf("CompressionLevel = %d, want 19", cfg.CompressionLevel)
	}
	if !cfg.Insecure {
		t.Error("Insecure = false, want true")
	}
	if cfg.DigestType != "blake3" {
		t.Errorf("DigestType = %q, want unchanged default %q", cfg.DigestType, "blake3")
	}
}

func TestConfigDigestType(t *testing.T) {
	cfg := DefaultConfig()
	digestType, err := cfg.digestType()
	if err != nil {
		t.Fatalf("digestType() error: %v", err)
	}
	if digestType != integrity.DigestBLAKE3 {
		t.Errorf("digestType() = %v, want DigestBLAKE3", digestType)
	}

	cfg.DigestType = "sha256"
	if _, err := cfg.digestType(); err == nil {
		t.Error("expected an error for an unknown digest type")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/zarcfile/zarc/lib/integrity"
)

// Config holds zarc's persistent defaults: the digest/signature
// algorithms and compression level new archives are packed with, and
// whether verification failures are fatal by default. It is loaded
// from a JSONC file (comments and trailing commas permitted) so the
// file can document its own fields.
type Config struct {
	DigestType       string `json:"digest_type"`
	SignatureType    string `json:"signature_type"`
	CompressionLevel int    `json:"compression_level"`
	Insecure         bool   `json:"insecure"`
}

// DefaultConfig returns zarc's built-in defaults, used when no config
// file is found and as the base a config file's fields are merged
// onto.
func DefaultConfig() Config {
	return Config{
		DigestType:       "blake3",
		SignatureType:    "ed25519",
		CompressionLevel: 3,
		Insecure:         false,
	}
}

// DefaultConfigPath returns the platform-appropriate location of
// zarc's config file: $XDG_CONFIG_HOME/zarc/config.jsonc, falling
// back to ~/.config/zarc/config.jsonc.
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "zarc", "config.jsonc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "zarc", "config.jsonc")
}

// LoadConfig reads and parses a JSONC config file at path, merging its
// fields onto DefaultConfig. A missing file is not an error: it just
// means the defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	stripped := jsonc.ToJSON(data)
	if err := json.Unmarshal(stripped, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// digestType resolves the config's digest algorithm name to its
// on-disk code.
func (c Config) digestType() (integrity.DigestType, error) {
	switch c.DigestType {
	case "blake3", "":
		return integrity.DigestBLAKE3, nil
	default:
		return 0, fmt.Errorf("unknown digest type %q", c.DigestType)
	}
}

// signatureType resolves the config's signature algorithm name to its
// on-disk code.
func (c Config) signatureType() (integrity.SignatureType, error) {
	switch c.SignatureType {
	case "ed25519", "":
		return integrity.SignatureEd25519, nil
	default:
		return 0, fmt.Errorf("unknown signature type %q", c.SignatureType)
	}
}

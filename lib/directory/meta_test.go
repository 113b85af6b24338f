// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"testing"

	"github.com/zarcfile/zarc/lib/integrity"
)

func TestMetaVerifyAcceptsMatchingHeader(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}
	if err := meta.Verify(h); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestMetaVerifyIgnoresCryptoFieldChanges(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	resigned := h
	resigned.Digest = make([]byte, len(h.Digest))
	resigned.Digest[0] = 0x01
	resigned.Signature = make([]byte, len(h.Signature))
	resigned.Signature[0] = 0x02

	if err := meta.Verify(resigned); err != nil {
		t.Fatalf("Verify should ignore digest/signature changes: %v", err)
	}
}

func TestMetaVerifyRejectsAlteredUncompressedLength(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	altered := h
	altered.UncompressedLength++

	err = meta.Verify(altered)
	if err == nil {
		t.Fatal("expected Verify to reject altered uncompressed length")
	}
	if !integrity.IsIntegrityError(err, integrity.MetaMismatch) {
		t.Fatalf("expected MetaMismatch, got %v", err)
	}
}

func TestMetaVerifyRejectsDifferentPublicKey(t *testing.T) {
	h := sampleHeader()
	meta, err := NewMeta(h)
	if err != nil {
		t.Fatalf("NewMeta: %v", err)
	}

	altered := h
	altered.PublicKey = append([]byte(nil), h.PublicKey...)
	altered.PublicKey[0] ^= 0xFF

	if err := meta.Verify(altered); err == nil {
		t.Fatal("expected Verify to reject a different public key")
	}
}

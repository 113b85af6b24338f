// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"testing"

	"github.com/zarcfile/zarc/lib/codec"
)

func TestPosixOwnerRoundTripBoth(t *testing.T) {
	id := uint32(1000)
	o := PosixOwner{ID: &id, Name: "alice", HasName: true}

	encoded, err := codec.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded PosixOwner
	if err := codec.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID == nil || *decoded.ID != id {
		t.Fatalf("ID = %v, want %d", decoded.ID, id)
	}
	if !decoded.HasName || decoded.Name != "alice" {
		t.Fatalf("Name = %q, HasName = %v", decoded.Name, decoded.HasName)
	}
}

func TestPosixOwnerRoundTripEmpty(t *testing.T) {
	o := PosixOwner{}
	if !o.IsEmpty() {
		t.Fatal("expected zero-value owner to be empty")
	}

	encoded, err := codec.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded PosixOwner
	if err := codec.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.IsEmpty() {
		t.Fatalf("expected decoded owner to be empty, got %+v", decoded)
	}
}

func TestPosixOwnerIDOnly(t *testing.T) {
	id := uint32(42)
	o := PosixOwner{ID: &id}

	encoded, err := codec.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded PosixOwner
	if err := codec.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID == nil || *decoded.ID != id {
		t.Fatalf("ID = %v, want %d", decoded.ID, id)
	}
	if decoded.HasName {
		t.Fatal("expected no name")
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framestore

import (
	"encoding/hex"
	"sync"

	"github.com/zarcfile/zarc/lib/directory"
)

// Entry is one frame's location and size bookkeeping, as recorded in
// a directory's Frame entry.
type Entry struct {
	Offset           uint64
	FramedSize       uint64
	UncompressedSize uint64
	EditionAdded     uint64
}

// Store is a content-addressed, digest-keyed map from a frame's
// digest to its Entry. It is safe for concurrent reads; Insert serializes
// writers so that the write path's check-then-insert dedup sequence is
// atomic under concurrent packing of multiple files.
type Store struct {
	mu       sync.Mutex
	byDigest map[string]Entry
	offsets  map[uint64]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byDigest: make(map[string]Entry),
		offsets:  make(map[uint64]string),
	}
}

// BuildFromDirectory constructs a Store from a directory's Frame
// entries. It is the read-path constructor: the directory's own
// decode step has already rejected a duplicate offset, so the only
// remaining invariant to enforce here is digest uniqueness.
func BuildFromDirectory(d *directory.Directory) (*Store, error) {
	store := New()
	for _, frame := range d.Frames {
		entry := Entry{
			Offset:           frame.Offset,
			FramedSize:       frame.FramedSize,
			UncompressedSize: frame.UncompressedSize,
			EditionAdded:     frame.EditionAdded,
		}
		if err := store.Insert(frame.Digest, entry); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Lookup reports whether digest is already known, and its Entry if
// so. The write path calls this before compressing a new payload: if
// the digest is already present, the payload is discarded and only a
// new File entry referencing the existing frame is emitted.
func (s *Store) Lookup(digest []byte) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byDigest[hex.EncodeToString(digest)]
	return entry, ok
}

// Insert adds an entry for digest, enforcing that its offset has not
// already been claimed by a different digest and that this exact
// digest has not already been recorded at a different offset.
// Re-inserting an identical (digest, entry) pair is a no-op, not an
// error.
func (s *Store) Insert(digest []byte, entry Entry) error {
	key := hex.EncodeToString(digest)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existingKey, claimed := s.offsets[entry.Offset]; claimed && existingKey != key {
		return &FrameStoreError{Kind: DuplicateOffset, Subject: key}
	}
	if existing, ok := s.byDigest[key]; ok {
		if existing.Offset != entry.Offset {
			return &FrameStoreError{Kind: DuplicateDigest, Subject: key}
		}
		return nil
	}

	s.byDigest[key] = entry
	s.offsets[entry.Offset] = key
	return nil
}

// Len reports the number of distinct digests held by the store.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byDigest)
}

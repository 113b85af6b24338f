// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Zarc's standard CBOR encoding configuration.
//
// Every on-disk CBOR payload in a Zarc archive — directory records,
// the Meta record's embedded header snapshot, user-metadata maps —
// goes through the same encoder and decoder modes so that two
// encodings of the same logical value are always byte-identical. This
// matters beyond tidiness: the directory digest (lib/integrity) is
// computed over the encoded bytes, and the Meta record's
// header-with-zeroed-crypto-fields check is a byte comparison. If two
// components of this module configured CBOR differently, identical
// directory state could hash differently depending on which code path
// wrote it.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes.
//
// For buffer-oriented operations (an already-assembled directory
// record payload):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the directory record scanner reads
// one record payload at a time off a bounded io.Reader):
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// Directory record types in lib/directory use `cbor` struct tags
// exclusively — they are never serialized as JSON, so there is no
// fallback convention to document here. `cbor:",omitempty"` is used
// throughout to keep optional record fields (timestamps, xattrs,
// special-file targets) out of the encoded bytes when absent, which
// also keeps the deterministic encoding stable across archives that
// differ only in which optional fields a given writer populated.
package codec

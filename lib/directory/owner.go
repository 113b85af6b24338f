// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"github.com/zarcfile/zarc/lib/codec"
)

// PosixOwner carries the numeric id and/or the name half of a POSIX
// owner or group, encoded on disk as a CBOR array of zero to two
// heterogeneous elements. Decoding prefers the text-string form when
// both are present, and takes the last integer if more than one
// appears — the format permits this laxity so that writers from
// different platforms need not agree on which form is canonical.
type PosixOwner struct {
	ID      *uint32
	Name    string
	HasName bool
}

// MarshalCBOR encodes the owner as an array containing, in order,
// the numeric id (if present) and the name (if present).
func (o PosixOwner) MarshalCBOR() ([]byte, error) {
	var elements []any
	if o.ID != nil {
		elements = append(elements, *o.ID)
	}
	if o.HasName {
		elements = append(elements, o.Name)
	}
	return codec.Marshal(elements)
}

// UnmarshalCBOR decodes a heterogeneous array of integers and
// strings into an owner tuple.
func (o *PosixOwner) UnmarshalCBOR(data []byte) error {
	var elements []any
	if err := codec.Unmarshal(data, &elements); err != nil {
		return err
	}

	var result PosixOwner
	for _, element := range elements {
		switch value := element.(type) {
		case uint64:
			id := uint32(value)
			result.ID = &id
		case int64:
			id := uint32(value)
			result.ID = &id
		case string:
			result.Name = value
			result.HasName = true
		}
	}
	*o = result
	return nil
}

// IsEmpty reports whether the owner carries neither an id nor a name,
// which is valid (and common for special files that do not record
// ownership).
func (o PosixOwner) IsEmpty() bool {
	return o.ID == nil && !o.HasName
}

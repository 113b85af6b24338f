// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"strings"

	"github.com/zarcfile/zarc/lib/codec"
)

// PathComponent is a single element of a File entry's name array.
// Most components are ordinary UTF-8 text, but the format permits
// raw byte-string components for filenames that are not valid
// Unicode on the filesystem that produced them.
type PathComponent struct {
	text    string
	raw     []byte
	isBytes bool
}

// Text returns a text path component.
func Text(s string) PathComponent {
	return PathComponent{text: s}
}

// Bytes returns a raw byte-string path component.
func Bytes(b []byte) PathComponent {
	return PathComponent{raw: b, isBytes: true}
}

// IsBytes reports whether the component is a raw byte string rather
// than text.
func (c PathComponent) IsBytes() bool {
	return c.isBytes
}

// String returns the component's value. For byte-string components
// this is a best-effort conversion, used for display and by
// ValidatePathComponents.
func (c PathComponent) String() string {
	if c.isBytes {
		return string(c.raw)
	}
	return c.text
}

// RawBytes returns the component's raw byte-string value. Valid only
// when IsBytes is true.
func (c PathComponent) RawBytes() []byte {
	return c.raw
}

// MarshalCBOR encodes the component as a CBOR text string or byte
// string depending on its kind.
func (c PathComponent) MarshalCBOR() ([]byte, error) {
	if c.isBytes {
		return codec.Marshal(c.raw)
	}
	return codec.Marshal(c.text)
}

// UnmarshalCBOR decodes a CBOR text string or byte string into the
// component.
func (c *PathComponent) UnmarshalCBOR(data []byte) error {
	var asText string
	if err := codec.Unmarshal(data, &asText); err == nil {
		*c = Text(asText)
		return nil
	}

	var asBytes []byte
	if err := codec.Unmarshal(data, &asBytes); err != nil {
		return err
	}
	*c = Bytes(asBytes)
	return nil
}

// ValidatePathComponents enforces the pathname rule shared by pack
// and decode: no component may be "." or "..", and no component may
// encode a drive letter or UNC prefix. Zarc does not impose a length
// limit on names.
func ValidatePathComponents(components []PathComponent) error {
	if len(components) == 0 {
		return &DirectoryError{Kind: InvalidPath, Subject: "empty name"}
	}
	for _, component := range components {
		text := component.String()
		switch text {
		case ".", "..":
			return &DirectoryError{Kind: InvalidPath, Subject: text}
		case "":
			return &DirectoryError{Kind: InvalidPath, Subject: "empty component"}
		}
		driveLetter := len(text) >= 2 && text[1] == ':' && 'a' <= text[0]|0x20 && text[0]|0x20 <= 'z'
		if driveLetter || strings.HasPrefix(text, `\\`) {
			return &DirectoryError{Kind: InvalidPath, Subject: text}
		}
	}
	return nil
}

// JoinedPath renders components as a forward-slash-joined string for
// display (CLI output, error messages). It is not used for on-disk
// encoding.
func JoinedPath(components []PathComponent) string {
	out := ""
	for i, component := range components {
		if i > 0 {
			out += "/"
		}
		out += component.String()
	}
	return out
}

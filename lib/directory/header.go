// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package directory

import (
	"encoding/binary"
	"fmt"

	"github.com/zarcfile/zarc/lib/integrity"
)

// zarcMagic is the 3-byte Zarc magic carried by both the Zarc Header
// (inside the unintended-magic frame's raw block) and the directory
// header.
var zarcMagic = [3]byte{0x65, 0xAA, 0xDC}

const (
	fileVersion      byte = 0x01
	directoryVersion byte = 0x01
)

// HeaderPrefixSize is the fixed-layout portion of the directory
// header, before the variable-length crypto fields: magic(3) +
// reserved(1) + file version(1) + directory version(1) + digest
// type(1) + signature type(1) + uncompressed length(8).
const HeaderPrefixSize = 3 + 1 + 1 + 1 + 1 + 1 + 8

// Header is the fixed-layout directory-header skippable frame
// payload (§6): the algorithm codes, the directory's uncompressed
// byte length, and the variable-length public key, digest, and
// signature fields whose sizes those algorithm codes determine.
type Header struct {
	DigestType         integrity.DigestType
	SignatureType      integrity.SignatureType
	UncompressedLength uint64
	PublicKey          []byte
	Digest             []byte
	Signature          []byte
}

// MarshalBinary serializes the header to its exact on-disk byte
// layout.
func (h Header) MarshalBinary() ([]byte, error) {
	publicKeySize, ok := h.SignatureType.PublicKeySize()
	if !ok {
		return nil, fmt.Errorf("directory: unknown signature type %s", h.SignatureType)
	}
	digestSize, ok := h.DigestType.Size()
	if !ok {
		return nil, fmt.Errorf("directory: unknown digest type %s", h.DigestType)
	}
	signatureSize, ok := h.SignatureType.SignatureSize()
	if !ok {
		return nil, fmt.Errorf("directory: unknown signature type %s", h.SignatureType)
	}
	if len(h.PublicKey) != publicKeySize {
		return nil, fmt.Errorf("directory: public key is %d bytes, want %d", len(h.PublicKey), publicKeySize)
	}
	if len(h.Digest) != digestSize {
		return nil, fmt.Errorf("directory: digest is %d bytes, want %d", len(h.Digest), digestSize)
	}
	if len(h.Signature) != signatureSize {
		return nil, fmt.Errorf("directory: signature is %d bytes, want %d", len(h.Signature), signatureSize)
	}

	buffer := make([]byte, HeaderPrefixSize+publicKeySize+digestSize+signatureSize)
	copy(buffer[0:3], zarcMagic[:])
	buffer[3] = 0 // reserved
	buffer[4] = fileVersion
	buffer[5] = directoryVersion
	buffer[6] = byte(h.DigestType)
	buffer[7] = byte(h.SignatureType)
	binary.LittleEndian.PutUint64(buffer[8:16], h.UncompressedLength)

	offset := HeaderPrefixSize
	offset += copy(buffer[offset:], h.PublicKey)
	offset += copy(buffer[offset:], h.Digest)
	copy(buffer[offset:], h.Signature)

	return buffer, nil
}

// UnmarshalHeaderBinary parses a directory header from its on-disk
// byte layout.
func UnmarshalHeaderBinary(data []byte) (Header, error) {
	if len(data) < HeaderPrefixSize {
		return Header{}, fmt.Errorf("directory: header too short: %d bytes", len(data))
	}
	if [3]byte(data[0:3]) != zarcMagic {
		return Header{}, fmt.Errorf("directory: bad magic %x", data[0:3])
	}
	if data[4] != fileVersion {
		return Header{}, fmt.Errorf("directory: unsupported file version %d", data[4])
	}
	if data[5] != directoryVersion {
		return Header{}, fmt.Errorf("directory: unsupported directory version %d", data[5])
	}

	h := Header{
		DigestType:         integrity.DigestType(data[6]),
		SignatureType:      integrity.SignatureType(data[7]),
		UncompressedLength: binary.LittleEndian.Uint64(data[8:16]),
	}

	publicKeySize, ok := h.SignatureType.PublicKeySize()
	if !ok {
		return Header{}, fmt.Errorf("directory: unknown signature type %s", h.SignatureType)
	}
	digestSize, ok := h.DigestType.Size()
	if !ok {
		return Header{}, fmt.Errorf("directory: unknown digest type %s", h.DigestType)
	}
	signatureSize, ok := h.SignatureType.SignatureSize()
	if !ok {
		return Header{}, fmt.Errorf("directory: unknown signature type %s", h.SignatureType)
	}

	want := HeaderPrefixSize + publicKeySize + digestSize + signatureSize
	if len(data) != want {
		return Header{}, fmt.Errorf("directory: header is %d bytes, want %d", len(data), want)
	}

	offset := HeaderPrefixSize
	h.PublicKey = append([]byte(nil), data[offset:offset+publicKeySize]...)
	offset += publicKeySize
	h.Digest = append([]byte(nil), data[offset:offset+digestSize]...)
	offset += digestSize
	h.Signature = append([]byte(nil), data[offset:offset+signatureSize]...)

	return h, nil
}

// WithZeroedCrypto returns a copy of h with its Digest and Signature
// fields replaced by zero bytes of the same length, leaving the
// algorithm codes, uncompressed length, and public key untouched.
// This is the exact byte pattern the Meta record must carry.
func (h Header) WithZeroedCrypto() Header {
	zeroed := h
	zeroed.Digest = make([]byte, len(h.Digest))
	zeroed.Signature = make([]byte, len(h.Signature))
	return zeroed
}

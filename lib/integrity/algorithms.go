// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integrity

import (
	"fmt"
	"hash"
)

// DigestType identifies a hash algorithm by its on-disk single-byte
// code. Code 0 is reserved and MUST NOT appear on disk.
type DigestType byte

const (
	DigestReserved DigestType = 0
	DigestBLAKE3   DigestType = 1
)

func (t DigestType) String() string {
	switch t {
	case DigestReserved:
		return "reserved"
	case DigestBLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// Size returns the digest length in bytes for t, and false if t is
// not a known algorithm.
func (t DigestType) Size() (int, bool) {
	switch t {
	case DigestBLAKE3:
		return 32, true
	default:
		return 0, false
	}
}

// Hash computes the digest of data under algorithm t.
func (t DigestType) Hash(data []byte) ([]byte, error) {
	switch t {
	case DigestBLAKE3:
		return hashBLAKE3(data), nil
	case DigestReserved:
		return nil, &IntegrityError{Kind: DisallowedAlgorithm}
	default:
		return nil, &IntegrityError{Kind: UnknownAlgorithm, Subject: t.String()}
	}
}

// NewHasher returns a streaming hash.Hash for t, so a caller can hash
// a content frame's bytes in the same pass that compresses them
// instead of buffering the whole payload to call Hash.
func (t DigestType) NewHasher() (hash.Hash, error) {
	switch t {
	case DigestBLAKE3:
		return newBLAKE3Hasher(), nil
	case DigestReserved:
		return nil, &IntegrityError{Kind: DisallowedAlgorithm}
	default:
		return nil, &IntegrityError{Kind: UnknownAlgorithm, Subject: t.String()}
	}
}

// SignatureType identifies a signature algorithm by its on-disk
// single-byte code. Code 0 is reserved and MUST NOT appear on disk.
type SignatureType byte

const (
	SignatureReserved SignatureType = 0
	SignatureEd25519  SignatureType = 1
)

func (t SignatureType) String() string {
	switch t {
	case SignatureReserved:
		return "reserved"
	case SignatureEd25519:
		return "ed25519"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// PublicKeySize returns the public key length in bytes for t, and
// false if t is not a known algorithm.
func (t SignatureType) PublicKeySize() (int, bool) {
	switch t {
	case SignatureEd25519:
		return 32, true
	default:
		return 0, false
	}
}

// SignatureSize returns the signature length in bytes for t, and
// false if t is not a known algorithm.
func (t SignatureType) SignatureSize() (int, bool) {
	switch t {
	case SignatureEd25519:
		return 64, true
	default:
		return 0, false
	}
}

// Verify reports whether signature is a valid signature over digest
// under publicKey, per algorithm t.
func (t SignatureType) Verify(publicKey, digest, signature []byte) (bool, error) {
	switch t {
	case SignatureEd25519:
		return verifyEd25519(publicKey, digest, signature), nil
	case SignatureReserved:
		return false, &IntegrityError{Kind: DisallowedAlgorithm}
	default:
		return false, &IntegrityError{Kind: UnknownAlgorithm, Subject: t.String()}
	}
}

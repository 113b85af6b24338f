// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integrity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Keypair is a per-archive signing key. A fresh one MUST be generated
// for every pack or append operation; the secret half MUST be
// destroyed (Zero) once the archive handle is released, since Zarc
// never persists a secret key — only the public key is written to
// the directory header.
type Keypair struct {
	Type   SignatureType
	Public []byte

	secret []byte
}

// GenerateKeypair creates a new ephemeral keypair under the given
// signature algorithm.
func GenerateKeypair(sigType SignatureType) (*Keypair, error) {
	switch sigType {
	case SignatureEd25519:
		public, secret, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("integrity: generating Ed25519 keypair: %w", err)
		}
		return &Keypair{Type: sigType, Public: []byte(public), secret: []byte(secret)}, nil
	case SignatureReserved:
		return nil, &IntegrityError{Kind: DisallowedAlgorithm}
	default:
		return nil, &IntegrityError{Kind: UnknownAlgorithm, Subject: sigType.String()}
	}
}

// Sign signs digest under the keypair's secret key.
func (k *Keypair) Sign(digest []byte) ([]byte, error) {
	if k.secret == nil {
		return nil, fmt.Errorf("integrity: keypair has no secret key (zeroised or verify-only)")
	}
	switch k.Type {
	case SignatureEd25519:
		return signEd25519(k.secret, digest), nil
	default:
		return nil, &IntegrityError{Kind: UnknownAlgorithm, Subject: k.Type.String()}
	}
}

// Zero overwrites the secret key material in place. Callers MUST
// call this when an Archive handle that generated or held a keypair
// is released, whether or not the operation succeeded.
func (k *Keypair) Zero() {
	for i := range k.secret {
		k.secret[i] = 0
	}
	k.secret = nil
}

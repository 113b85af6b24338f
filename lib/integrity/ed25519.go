// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package integrity

import "crypto/ed25519"

func signEd25519(secretKey, digest []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(secretKey), digest)
}

func verifyEd25519(publicKey, digest, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), digest, signature)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"io"

	"github.com/zarcfile/zarc/lib/directory"
	"github.com/zarcfile/zarc/lib/integrity"
)

func staticContent(data []byte) ContentOpener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}

func fileInput(name string, data []byte) Input {
	return Input{
		Path: []directory.PathComponent{directory.Text(name)},
		Open: staticContent(data),
	}
}

func testOptions() Options {
	return Options{
		DigestType:    integrity.DigestBLAKE3,
		SignatureType: integrity.SignatureEd25519,
	}
}

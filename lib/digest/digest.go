// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 16

// HexSize is the length of the formatted digest: two lowercase hex
// characters per byte.
const HexSize = 2 * Size

// Digest is a 128-bit keyed BLAKE3 digest of an entry's original
// (pre-compression, pre-encryption) bytes.
type Digest [Size]byte

// contentDomainKey keys every content digest. The bytes are the ASCII
// domain name zero-padded to 32 bytes, so they read plainly in a hex
// dump. Changing the key invalidates every stored digest.
var contentDomainKey = [32]byte{
	'h', 'u', 'f', 'f', '.', 'e', 'n', 't', 'r', 'y', '.',
	'c', 'o', 'n', 't', 'e', 'n', 't', 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// Sum returns the content digest of data.
func Sum(data []byte) Digest {
	hasher := newHasher()
	hasher.Write(data)
	return finish(hasher)
}

// Hasher computes a digest incrementally. It implements io.Writer.
type Hasher struct {
	hasher *blake3.Hasher
}

// NewHasher returns a Hasher in its initial keyed state.
func NewHasher() *Hasher {
	return &Hasher{hasher: newHasher()}
}

// Write adds data to the running digest. It never returns an error.
func (h *Hasher) Write(data []byte) (int, error) {
	return h.hasher.Write(data)
}

// Digest returns the digest of everything written so far.
func (h *Hasher) Digest() Digest {
	return finish(h.hasher)
}

// Format returns the 32-character lowercase hex form of d, the form
// stored in entry headers.
func Format(d Digest) string {
	return hex.EncodeToString(d[:])
}

// String implements fmt.Stringer with [Format].
func (d Digest) String() string {
	return Format(d)
}

// Parse decodes the stored hex form of a digest. Only the canonical
// lowercase form is accepted.
func Parse(text string) (Digest, error) {
	var d Digest
	if len(text) != HexSize {
		return d, fmt.Errorf("digest is %d characters, want %d", len(text), HexSize)
	}
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return d, fmt.Errorf("parsing digest: %w", err)
	}
	copy(d[:], decoded)
	if Format(d) != text {
		return d, fmt.Errorf("digest %q is not lowercase hex", text)
	}
	return d, nil
}

func newHasher() *blake3.Hasher {
	// NewKeyed only fails for keys that are not 32 bytes long.
	hasher, err := blake3.NewKeyed(contentDomainKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

func finish(hasher *blake3.Hasher) Digest {
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

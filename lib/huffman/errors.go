// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAlphabet is returned by Build when no symbol, not even a
	// synthetic fallback, can be assigned a leaf.
	ErrEmptyAlphabet = errors.New("huffman: frequency table has no usable symbol")

	// ErrInvalidTree is returned when a tree cannot produce a usable
	// codebook: a root without two leaves, or a code longer than
	// [MaxCodeLength] bits.
	ErrInvalidTree = errors.New("huffman: invalid tree")

	// ErrNotNormalized is returned when a table with counts above
	// [MaxStoredCount] is serialized.
	ErrNotNormalized = errors.New("huffman: frequency table is not normalized")
)

// CorruptStreamError reports a packed body that cannot be decoded with
// the given codebook: either the bits ran out before the expected
// number of symbols was produced, or a run of bits longer than the
// longest code matched nothing.
type CorruptStreamError struct {
	// BitOffset is the position of the last bit consumed, counted from
	// the most significant bit of the first body byte.
	BitOffset int64

	// Decoded is the number of symbols successfully decoded before the
	// failure.
	Decoded int

	// Expected is the symbol count the caller asked for.
	Expected int

	// Reason is a short description of the failure.
	Reason string
}

func (err *CorruptStreamError) Error() string {
	return fmt.Sprintf("huffman: corrupt bit stream at bit %d (%d of %d symbols decoded): %s",
		err.BitOffset, err.Decoded, err.Expected, err.Reason)
}

// IsCorruptStream reports whether err is or wraps a [CorruptStreamError].
func IsCorruptStream(err error) bool {
	var streamError *CorruptStreamError
	return errors.As(err, &streamError)
}

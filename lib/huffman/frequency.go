// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"fmt"
	"math/bits"
)

// SymbolCount is the size of the alphabet: one symbol per byte value.
const SymbolCount = 256

// MaxStoredCount is the largest count the serialized table can hold.
// The on-disk table spends exactly one byte per symbol.
const MaxStoredCount = 255

// FrequencyTable maps every byte value to its occurrence count. The
// index is the symbol. A table always has all 256 slots; symbols that
// never occur have a count of zero.
type FrequencyTable [SymbolCount]uint64

// Count tallies the occurrences of each byte value in data.
func Count(data []byte) FrequencyTable {
	var table FrequencyTable
	for _, symbol := range data {
		table[symbol]++
	}
	return table
}

// TableFromBytes reconstructs a table from its serialized form. No
// counting is involved: the stored bytes are the counts.
func TableFromBytes(stored [SymbolCount]byte) FrequencyTable {
	var table FrequencyTable
	for symbol, count := range stored {
		table[symbol] = uint64(count)
	}
	return table
}

// Max returns the largest count in the table.
func (t FrequencyTable) Max() uint64 {
	var largest uint64
	for _, count := range t {
		largest = max(largest, count)
	}
	return largest
}

// Total returns the sum of all counts. For a table produced by Count
// this is the length of the counted buffer.
func (t FrequencyTable) Total() uint64 {
	var total uint64
	for _, count := range t {
		total += count
	}
	return total
}

// Distinct returns the number of symbols with a nonzero count.
func (t FrequencyTable) Distinct() int {
	distinct := 0
	for _, count := range t {
		if count > 0 {
			distinct++
		}
	}
	return distinct
}

// Normalize rescales the table so that every count fits in one byte.
//
// A table whose largest count is at most [MaxStoredCount] is returned
// unchanged. Otherwise every nonzero count becomes
//
//	1 + count*255/(max+1)
//
// with floor division, which maps nonzero counts into [1, 255] and
// keeps zero counts at zero. The rescaling is lossy but deterministic:
// the normalized table, not the raw counts, is what gets stored and
// rebuilt, so encoder and decoder always agree.
func (t FrequencyTable) Normalize() FrequencyTable {
	largest := t.Max()
	if largest <= MaxStoredCount {
		return t
	}

	var normalized FrequencyTable
	for symbol, count := range t {
		if count == 0 {
			continue
		}
		// 128-bit intermediate: count*255 overflows uint64 long before
		// count itself does. The quotient is < 255, so Div64 cannot
		// overflow (high < 255 < largest+1).
		high, low := bits.Mul64(count, MaxStoredCount)
		quotient, _ := bits.Div64(high, low, largest+1)
		normalized[symbol] = 1 + quotient
	}
	return normalized
}

// Normalized reports whether every count fits in one byte.
func (t FrequencyTable) Normalized() bool {
	return t.Max() <= MaxStoredCount
}

// Bytes returns the one-byte-per-symbol serialized form of the table.
// Returns [ErrNotNormalized] if any count exceeds [MaxStoredCount];
// call [FrequencyTable.Normalize] first.
func (t FrequencyTable) Bytes() ([SymbolCount]byte, error) {
	var stored [SymbolCount]byte
	for symbol, count := range t {
		if count > MaxStoredCount {
			return stored, fmt.Errorf("%w: symbol %#02x has count %d", ErrNotNormalized, symbol, count)
		}
		stored[symbol] = byte(count)
	}
	return stored, nil
}

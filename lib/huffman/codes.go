// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"fmt"
	"strings"
)

// MaxCodeLength is the longest code a [Codebook] can hold. Trees built
// from normalized tables never come close: the weights are bounded by
// 255, which bounds the depth to a few dozen levels at most.
const MaxCodeLength = 64

// Code is the bit pattern assigned to one symbol. The code occupies the
// low Length bits of Bits, most significant bit first.
type Code struct {
	Bits   uint64
	Length uint8
}

// String renders the code as a string of '0' and '1' characters.
func (c Code) String() string {
	var builder strings.Builder
	builder.Grow(int(c.Length))
	for i := int(c.Length) - 1; i >= 0; i-- {
		if c.Bits>>uint(i)&1 == 1 {
			builder.WriteByte('1')
		} else {
			builder.WriteByte('0')
		}
	}
	return builder.String()
}

// Codebook is the symbol-to-code mapping derived from a [Tree], plus
// its inverse for decoding. A Codebook is immutable after construction
// and safe for concurrent use.
type Codebook struct {
	codes     [SymbolCount]Code
	present   [SymbolCount]bool
	symbols   map[Code]byte
	maxLength uint8
}

// BuildCodebook is shorthand for Build followed by [Tree.Codebook].
func BuildCodebook(table FrequencyTable) (*Codebook, error) {
	tree, err := Build(table)
	if err != nil {
		return nil, err
	}
	return tree.Codebook()
}

// Codebook derives the code of every leaf: a left edge appends a 0 bit,
// a right edge a 1 bit. The walk uses an explicit stack. A path longer
// than [MaxCodeLength] returns [ErrInvalidTree].
func (t *Tree) Codebook() (*Codebook, error) {
	if len(t.nodes) == 0 || t.nodes[t.root].leaf() {
		return nil, fmt.Errorf("%w: root has no children", ErrInvalidTree)
	}

	book := &Codebook{symbols: make(map[Code]byte, t.Leaves())}

	type frame struct {
		index int32
		code  Code
	}
	stack := []frame{{index: t.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current := &t.nodes[top.index]

		if current.leaf() {
			book.codes[current.symbol] = top.code
			book.present[current.symbol] = true
			book.symbols[top.code] = current.symbol
			book.maxLength = max(book.maxLength, top.code.Length)
			continue
		}

		if top.code.Length >= MaxCodeLength {
			return nil, fmt.Errorf("%w: code longer than %d bits", ErrInvalidTree, MaxCodeLength)
		}
		next := top.code.Length + 1
		stack = append(stack,
			frame{index: current.right, code: Code{Bits: top.code.Bits<<1 | 1, Length: next}},
			frame{index: current.left, code: Code{Bits: top.code.Bits << 1, Length: next}})
	}
	return book, nil
}

// Lookup returns the code for symbol. The boolean is false when the
// symbol has no leaf in the tree the codebook was derived from.
func (b *Codebook) Lookup(symbol byte) (Code, bool) {
	return b.codes[symbol], b.present[symbol]
}

// Symbol returns the symbol whose code is exactly code.
func (b *Codebook) Symbol(code Code) (byte, bool) {
	symbol, ok := b.symbols[code]
	return symbol, ok
}

// MaxLength returns the length of the longest code.
func (b *Codebook) MaxLength() int {
	return int(b.maxLength)
}

// Len returns the number of symbols with a code.
func (b *Codebook) Len() int {
	return len(b.symbols)
}

// Lengths returns the code length of every symbol, zero for symbols
// without a code.
func (b *Codebook) Lengths() [SymbolCount]uint8 {
	var lengths [SymbolCount]uint8
	for symbol := range SymbolCount {
		if b.present[symbol] {
			lengths[symbol] = b.codes[symbol].Length
		}
	}
	return lengths
}

// EncodedBits returns the exact number of bits [Pack] produces for a
// buffer with the given symbol counts. Counts for symbols without a
// code are ignored.
func (b *Codebook) EncodedBits(table FrequencyTable) uint64 {
	var total uint64
	for symbol, count := range table {
		if b.present[symbol] {
			total += count * uint64(b.codes[symbol].Length)
		}
	}
	return total
}

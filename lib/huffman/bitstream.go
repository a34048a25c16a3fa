// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import "fmt"

// BitWriter packs variable-length codes into bytes, most significant
// bit first. The zero value is ready to use.
type BitWriter struct {
	buffer []byte

	// pending holds the bits of the partially filled last byte, left
	// aligned; filled counts how many of them are in use.
	pending byte
	filled  uint8

	bitLen int64
}

// NewBitWriter returns a writer whose buffer is preallocated for
// sizeHint bytes.
func NewBitWriter(sizeHint int) *BitWriter {
	return &BitWriter{buffer: make([]byte, 0, sizeHint)}
}

// WriteCode appends the bits of code.
func (w *BitWriter) WriteCode(code Code) {
	remaining := code.Length
	for remaining > 0 {
		space := 8 - w.filled
		take := min(space, remaining)
		// The next take bits of the code, counted from its MSB.
		chunk := byte(code.Bits>>(remaining-take)) & (1<<take - 1)
		w.pending |= chunk << (space - take)
		w.filled += take
		remaining -= take
		if w.filled == 8 {
			w.buffer = append(w.buffer, w.pending)
			w.pending = 0
			w.filled = 0
		}
	}
	w.bitLen += int64(code.Length)
}

// BitLen returns the number of bits written so far.
func (w *BitWriter) BitLen() int64 {
	return w.bitLen
}

// Bytes returns the packed bytes. A partially filled final byte is
// included with its unused low bits set to zero. The writer may keep
// accepting codes afterwards; the returned slice is not affected.
func (w *BitWriter) Bytes() []byte {
	if w.filled == 0 {
		return w.buffer[:len(w.buffer):len(w.buffer)]
	}
	output := make([]byte, len(w.buffer)+1)
	copy(output, w.buffer)
	output[len(w.buffer)] = w.pending
	return output
}

// Pack encodes every byte of data with book. A byte without a code in
// book is an error; a codebook built from Count(data), normalized or
// not, covers every byte of data.
func Pack(data []byte, book *Codebook) ([]byte, error) {
	var table FrequencyTable
	if len(data) > 0 {
		table = Count(data)
	}
	for symbol, count := range table {
		if count > 0 && !book.present[symbol] {
			return nil, fmt.Errorf("huffman: symbol %#02x has no code in the codebook", symbol)
		}
	}

	writer := NewBitWriter(int((book.EncodedBits(table) + 7) / 8))
	for _, symbol := range data {
		writer.WriteCode(book.codes[symbol])
	}
	return writer.Bytes(), nil
}

// Unpack decodes symbolCount symbols from body with book.
//
// Bits are consumed one at a time, most significant first, growing a
// candidate code that is looked up after every bit. A match emits the
// symbol and resets the candidate. Decoding stops as soon as
// symbolCount symbols have been produced; the remaining bits are
// padding and are never read.
//
// Returns a [*CorruptStreamError] when the body runs out of bits early
// or when the candidate grows past the codebook's longest code without
// matching. A symbolCount of zero returns an empty buffer.
func Unpack(body []byte, book *Codebook, symbolCount int) ([]byte, error) {
	if symbolCount < 0 {
		return nil, fmt.Errorf("huffman: negative symbol count %d", symbolCount)
	}
	if symbolCount == 0 {
		return []byte{}, nil
	}

	// Every code is at least one bit long, so the body bounds the
	// output no matter what the header claims.
	output := make([]byte, 0, min(symbolCount, len(body)*8))
	totalBits := int64(len(body)) * 8
	maxLength := book.maxLength

	var candidate Code
	var position int64
	for position < totalBits {
		bit := body[position>>3] >> (7 - uint(position&7)) & 1
		position++

		candidate.Bits = candidate.Bits<<1 | uint64(bit)
		candidate.Length++

		if symbol, ok := book.symbols[candidate]; ok {
			output = append(output, symbol)
			if len(output) == symbolCount {
				return output, nil
			}
			candidate = Code{}
			continue
		}
		if candidate.Length >= maxLength {
			return nil, &CorruptStreamError{
				BitOffset: position - 1,
				Decoded:   len(output),
				Expected:  symbolCount,
				Reason:    fmt.Sprintf("no code matches %d-bit sequence %s", candidate.Length, candidate),
			}
		}
	}

	return nil, &CorruptStreamError{
		BitOffset: position - 1,
		Decoded:   len(output),
		Expected:  symbolCount,
		Reason:    "body ended before the expected number of symbols",
	}
}

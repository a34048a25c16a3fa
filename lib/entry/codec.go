// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"fmt"
	"math"

	"github.com/Axonny/HuffmanCoding/lib/digest"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

// Cipher is the optional symmetric layer applied to an entry's packed
// body. Decrypt must fail with an error, never return garbage, when
// the key is wrong or the ciphertext was modified. An empty plaintext
// is legal in both directions.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// CodebookSource returns the codebook for a stored frequency table.
// Implementations may cache: the codebook is a pure function of the
// table.
type CodebookSource interface {
	Codebook(table [huffman.SymbolCount]byte) (*huffman.Codebook, error)
}

// BuildCodebooks is a [CodebookSource] that builds a fresh codebook on
// every call.
type BuildCodebooks struct{}

// Codebook builds the codebook for table.
func (BuildCodebooks) Codebook(table [huffman.SymbolCount]byte) (*huffman.Codebook, error) {
	return huffman.BuildCodebook(huffman.TableFromBytes(table))
}

// Options configures a [Codec].
type Options struct {
	// Cipher, when set, encrypts bodies on Encode and decrypts them on
	// Decode.
	Cipher Cipher

	// Codebooks supplies codebooks for stored tables. Defaults to
	// [BuildCodebooks].
	Codebooks CodebookSource
}

// Codec encodes files into entries and decodes them back. A Codec
// holds no per-entry state and is safe for concurrent use when its
// Cipher and CodebookSource are.
type Codec struct {
	cipher    Cipher
	codebooks CodebookSource
}

// NewCodec returns a codec configured by options.
func NewCodec(options Options) *Codec {
	codebooks := options.Codebooks
	if codebooks == nil {
		codebooks = BuildCodebooks{}
	}
	return &Codec{cipher: options.Cipher, codebooks: codebooks}
}

// Encrypted reports whether the codec applies a cipher.
func (c *Codec) Encrypted() bool {
	return c.cipher != nil
}

// Encode compresses data into an entry named filename.
//
// The digest covers the original bytes. The frequency table is
// normalized before the tree is built, so the codes used here are
// exactly the codes a decoder rebuilds from the stored table. With a
// cipher, the body length recorded in the header is the ciphertext
// length.
func (c *Codec) Encode(filename string, data []byte) (*Entry, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrEntryTooLarge, filename, len(data))
	}

	header := Header{
		Filename:    filename,
		SymbolCount: uint32(len(data)),
		Digest:      digest.Sum(data),
	}

	table, err := huffman.Count(data).Normalize().Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", filename, err)
	}
	header.Table = table

	book, err := c.codebooks.Codebook(table)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", filename, err)
	}
	body, err := huffman.Pack(data, book)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", filename, err)
	}

	if c.cipher != nil {
		body, err = c.cipher.Encrypt(body)
		if err != nil {
			return nil, fmt.Errorf("encrypting %q: %w", filename, err)
		}
	}
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %q body is %d bytes", ErrEntryTooLarge, filename, len(body))
	}
	header.BodyLength = uint32(len(body))

	return &Entry{Header: header, Body: body}, nil
}

// Decode reverses [Codec.Encode] and verifies the result.
//
// A cipher failure returns a [*WrongPasswordError] before any bits are
// unpacked. A body that does not decode returns a wrapped
// [*huffman.CorruptStreamError]. Decoded bytes whose digest differs
// from the stored one return a [*CorruptionError]. Decoded bytes are
// only returned when every check has passed.
func (c *Codec) Decode(e *Entry) ([]byte, error) {
	if uint64(len(e.Body)) != uint64(e.BodyLength) {
		return nil, fmt.Errorf("%w: entry %q: body is %d bytes, header says %d",
			ErrMalformedEntry, e.Filename, len(e.Body), e.BodyLength)
	}

	body := e.Body
	if c.cipher != nil {
		plaintext, err := c.cipher.Decrypt(body)
		if err != nil {
			return nil, &WrongPasswordError{Filename: e.Filename, Err: err}
		}
		body = plaintext
	}

	book, err := c.codebooks.Codebook(e.Table)
	if err != nil {
		return nil, fmt.Errorf("rebuilding codes for %q: %w", e.Filename, err)
	}
	data, err := huffman.Unpack(body, book, int(e.SymbolCount))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", e.Filename, err)
	}

	if actual := digest.Sum(data); actual != e.Digest {
		return nil, &CorruptionError{
			Filename:    e.Filename,
			KeySupplied: c.cipher != nil,
			Expected:    e.Digest,
			Actual:      actual,
		}
	}
	return data, nil
}

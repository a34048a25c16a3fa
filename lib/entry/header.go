// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Axonny/HuffmanCoding/lib/digest"
	"github.com/Axonny/HuffmanCoding/lib/huffman"
)

const (
	// MaxFilenameLength is the longest filename the one-byte length
	// prefix can describe.
	MaxFilenameLength = math.MaxUint8

	// fixedHeaderSize is everything after the filename: symbol count,
	// body length, frequency table, and hex digest.
	fixedHeaderSize = 4 + 4 + huffman.SymbolCount + digest.HexSize

	// MaxHeaderSize is the largest possible header.
	MaxHeaderSize = 1 + MaxFilenameLength + fixedHeaderSize
)

// Header is the self-describing prefix of an entry. Every field is
// stored; nothing is derived from the surrounding archive.
//
//	filename_length  1 byte
//	filename         filename_length bytes, UTF-8
//	symbol_count     uint32 big-endian, bytes in the original file
//	body_length      uint32 big-endian, bytes of (encrypted) body
//	frequency_table  256 bytes, normalized count per byte value
//	content_digest   32 lowercase hex characters
type Header struct {
	Filename    string
	SymbolCount uint32
	BodyLength  uint32
	Table       [huffman.SymbolCount]byte
	Digest      digest.Digest
}

// Size returns the encoded length of the header.
func (h *Header) Size() int {
	return 1 + len(h.Filename) + fixedHeaderSize
}

// EntrySize returns the encoded length of the header plus its body.
func (h *Header) EntrySize() int64 {
	return int64(h.Size()) + int64(h.BodyLength)
}

// FrequencyTable returns the stored table in the form the tree builder
// consumes.
func (h *Header) FrequencyTable() huffman.FrequencyTable {
	return huffman.TableFromBytes(h.Table)
}

// AppendBinary appends the encoded header to buffer.
func (h *Header) AppendBinary(buffer []byte) ([]byte, error) {
	if err := ValidateFilename(h.Filename); err != nil {
		return buffer, err
	}
	buffer = append(buffer, byte(len(h.Filename)))
	buffer = append(buffer, h.Filename...)
	buffer = binary.BigEndian.AppendUint32(buffer, h.SymbolCount)
	buffer = binary.BigEndian.AppendUint32(buffer, h.BodyLength)
	buffer = append(buffer, h.Table[:]...)
	buffer = append(buffer, digest.Format(h.Digest)...)
	return buffer, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h *Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, h.Size()))
}

// ReadHeader reads one header from r, leaving r positioned at the
// first body byte.
//
// Returns io.EOF, unwrapped, when r is exhausted before the first
// header byte: the clean end of an archive. Running out of data
// anywhere later is an [ErrMalformedEntry].
func ReadHeader(r io.Reader) (Header, error) {
	var header Header

	var lengthByte [1]byte
	if _, err := io.ReadFull(r, lengthByte[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return header, io.EOF
		}
		return header, fmt.Errorf("reading filename length: %w", err)
	}
	if lengthByte[0] == 0 {
		return header, fmt.Errorf("%w: zero filename length", ErrMalformedEntry)
	}

	rest := make([]byte, int(lengthByte[0])+fixedHeaderSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return header, fmt.Errorf("%w: header truncated: %w", ErrMalformedEntry, io.ErrUnexpectedEOF)
		}
		return header, fmt.Errorf("reading header: %w", err)
	}

	nameLength := int(lengthByte[0])
	header.Filename = string(rest[:nameLength])
	if err := ValidateFilename(header.Filename); err != nil {
		return header, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}
	fields := rest[nameLength:]
	header.SymbolCount = binary.BigEndian.Uint32(fields[0:4])
	header.BodyLength = binary.BigEndian.Uint32(fields[4:8])
	copy(header.Table[:], fields[8:8+huffman.SymbolCount])

	parsed, err := digest.Parse(string(fields[8+huffman.SymbolCount:]))
	if err != nil {
		return header, fmt.Errorf("%w: entry %q: %w", ErrMalformedEntry, header.Filename, err)
	}
	header.Digest = parsed
	return header, nil
}

// ParseHeader decodes the header at the start of data and returns it
// with the number of bytes it occupies. An empty data returns io.EOF.
func ParseHeader(data []byte) (Header, int, error) {
	reader := bytes.NewReader(data)
	header, err := ReadHeader(reader)
	if err != nil {
		return header, 0, err
	}
	return header, len(data) - reader.Len(), nil
}

// ValidateFilename checks that name can be stored in a header and
// extracted without escaping the destination directory: 1 to 255
// bytes of valid UTF-8 forming a relative, slash-separated path with
// no empty, "." or ".." elements and no NUL bytes.
func ValidateFilename(name string) error {
	switch {
	case len(name) == 0:
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	case len(name) > MaxFilenameLength:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidFilename, len(name), MaxFilenameLength)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidFilename, name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidFilename, name)
	case name == "." || !fs.ValidPath(name):
		return fmt.Errorf("%w: %q is not a relative slash-separated path", ErrInvalidFilename, name)
	}
	return nil
}

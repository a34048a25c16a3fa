// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Entry is one encoded file: a header and its body. The body is the
// packed bit stream, encrypted when the entry was produced by a
// [Codec] with a cipher.
type Entry struct {
	Header
	Body []byte
}

// AppendBinary appends the encoded entry to buffer.
func (e *Entry) AppendBinary(buffer []byte) ([]byte, error) {
	if uint64(len(e.Body)) != uint64(e.BodyLength) {
		return buffer, fmt.Errorf("entry %q: body is %d bytes, header says %d", e.Filename, len(e.Body), e.BodyLength)
	}
	buffer, err := e.Header.AppendBinary(buffer)
	if err != nil {
		return buffer, err
	}
	return append(buffer, e.Body...), nil
}

// MarshalBinary implements encoding.BinaryMarshaler. The result is a
// complete single-entry archive.
func (e *Entry) MarshalBinary() ([]byte, error) {
	return e.AppendBinary(make([]byte, 0, e.EntrySize()))
}

// WriteTo writes the encoded entry to w.
func (e *Entry) WriteTo(w io.Writer) (int64, error) {
	header, err := e.Header.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if uint64(len(e.Body)) != uint64(e.BodyLength) {
		return 0, fmt.Errorf("entry %q: body is %d bytes, header says %d", e.Filename, len(e.Body), e.BodyLength)
	}
	written, err := w.Write(header)
	if err != nil {
		return int64(written), fmt.Errorf("writing header of %q: %w", e.Filename, err)
	}
	bodyWritten, err := w.Write(e.Body)
	if err != nil {
		return int64(written + bodyWritten), fmt.Errorf("writing body of %q: %w", e.Filename, err)
	}
	return int64(written + bodyWritten), nil
}

// ReadEntry reads one complete entry from r. Returns io.EOF, unwrapped,
// at the clean end of the stream.
func ReadEntry(r io.Reader) (*Entry, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	// The body length is untrusted until the bytes arrive: the buffer
	// grows with the data instead of being sized from the header.
	var body bytes.Buffer
	body.Grow(int(min(header.BodyLength, maxBodyPreallocation)))
	if _, err := io.CopyN(&body, r, int64(header.BodyLength)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: entry %q: body truncated, want %d bytes", ErrMalformedEntry, header.Filename, header.BodyLength)
		}
		return nil, fmt.Errorf("reading body of %q: %w", header.Filename, err)
	}
	return &Entry{Header: header, Body: body.Bytes()}, nil
}

const maxBodyPreallocation = 1 << 20

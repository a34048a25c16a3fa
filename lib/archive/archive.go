// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/Axonny/HuffmanCoding/lib/entry"
)

// Append returns archive with encoded appended. An archive is nothing
// but its entries back to back, so this is plain concatenation; the
// result may share storage with archive.
func Append(archive, encoded []byte) []byte {
	return append(archive, encoded...)
}

// Span locates one entry inside an archive buffer.
type Span struct {
	// Start is the offset of the entry's first header byte; End is one
	// past its last body byte.
	Start, End int64

	Header entry.Header
}

// BodyStart returns the offset of the entry's first body byte.
func (s Span) BodyStart() int64 {
	return s.Start + int64(s.Header.Size())
}

// Split walks archive entry by entry, reading only header fields to
// find where each entry ends. Bodies are never decoded.
//
// A malformed or truncated entry yields one error wrapping
// [entry.ErrMalformedEntry] and ends the sequence: without a valid
// header there is no way to find the next entry. The sequence can be
// ranged over any number of times.
func Split(archive []byte) iter.Seq2[Span, error] {
	return func(yield func(Span, error) bool) {
		var offset int64
		for offset < int64(len(archive)) {
			header, headerSize, err := entry.ParseHeader(archive[offset:])
			if err != nil {
				yield(Span{Start: offset}, fmt.Errorf("entry at offset %d: %w", offset, err))
				return
			}
			end := offset + int64(headerSize) + int64(header.BodyLength)
			if end > int64(len(archive)) {
				yield(Span{Start: offset, Header: header}, fmt.Errorf("%w: entry %q at offset %d: body needs %d bytes, %d remain",
					entry.ErrMalformedEntry, header.Filename, offset, header.BodyLength, int64(len(archive))-offset-int64(headerSize)))
				return
			}
			if !yield(Span{Start: offset, End: end, Header: header}, nil) {
				return
			}
			offset = end
		}
	}
}

// Scan reads complete entries from r until it is exhausted. A read or
// parse failure yields one error and ends the sequence.
func Scan(r io.Reader) iter.Seq2[*entry.Entry, error] {
	return func(yield func(*entry.Entry, error) bool) {
		for {
			next, err := entry.ReadEntry(r)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(next, nil) {
				return
			}
		}
	}
}

// Listing is one entry's header and its offset in the archive.
type Listing struct {
	Offset int64
	entry.Header
}

// List returns the header of every entry in r, in append order,
// without reading bodies into memory. When r is an io.Seeker bodies
// are seeked over; otherwise they are read and discarded.
//
// On a malformed entry List returns the headers before it together
// with the error.
func List(r io.Reader) ([]Listing, error) {
	var listings []Listing
	err := walkHeaders(r, func(listing Listing) error {
		listings = append(listings, listing)
		return nil
	})
	return listings, err
}

// walkHeaders calls visit for each header in r, skipping bodies.
func walkHeaders(r io.Reader, visit func(Listing) error) error {
	skip := discardSkipper(r)
	if seeker, ok := r.(io.Seeker); ok {
		if seekSkip, err := newSeekSkipper(seeker); err == nil {
			skip = seekSkip
		}
	}

	var offset int64
	for {
		header, err := entry.ReadHeader(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("entry at offset %d: %w", offset, err)
		}
		if err := skip(int64(header.BodyLength)); err != nil {
			return fmt.Errorf("%w: entry %q at offset %d: %w", entry.ErrMalformedEntry, header.Filename, offset, err)
		}
		if err := visit(Listing{Offset: offset, Header: header}); err != nil {
			return err
		}
		offset += header.EntrySize()
	}
}

// errShortBody reports an archive that ends inside an entry's body.
var errShortBody = errors.New("body truncated")

func discardSkipper(r io.Reader) func(int64) error {
	return func(length int64) error {
		skipped, err := io.CopyN(io.Discard, r, length)
		if skipped < length {
			if err == nil || err == io.EOF {
				return errShortBody
			}
			return err
		}
		return nil
	}
}

// newSeekSkipper returns a skipper that seeks over bodies and detects
// truncation against the stream's end. It fails when r cannot seek, as
// with a pipe on stdin.
func newSeekSkipper(seeker io.Seeker) (func(int64) error, error) {
	current, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := seeker.Seek(current, io.SeekStart); err != nil {
		return nil, err
	}
	return func(length int64) error {
		position, err := seeker.Seek(length, io.SeekCurrent)
		if err != nil {
			return err
		}
		if position > end {
			return errShortBody
		}
		return nil
	}, nil
}

// Writer appends entries to an archive stream.
type Writer struct {
	w       io.Writer
	entries int
	written int64
}

// NewWriter returns a Writer appending to w. Appending to an existing
// archive is a matter of opening it with O_APPEND.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Add writes one entry.
func (w *Writer) Add(e *entry.Entry) error {
	written, err := e.WriteTo(w.w)
	w.written += written
	if err != nil {
		return err
	}
	w.entries++
	return nil
}

// Entries returns the number of entries written.
func (w *Writer) Entries() int {
	return w.entries
}

// Written returns the number of bytes written.
func (w *Writer) Written() int64 {
	return w.written
}

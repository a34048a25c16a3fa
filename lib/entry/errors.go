// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"errors"
	"fmt"

	"github.com/Axonny/HuffmanCoding/lib/digest"
)

var (
	// ErrMalformedEntry wraps every failure to parse an entry header
	// or locate its body: truncation, a zero filename length, or a
	// digest field that is not lowercase hex.
	ErrMalformedEntry = errors.New("malformed entry")

	// ErrInvalidFilename is returned for a filename that cannot be
	// stored or safely extracted.
	ErrInvalidFilename = errors.New("invalid entry filename")

	// ErrEntryTooLarge is returned when the input or the encoded body
	// does not fit the header's 32-bit length fields.
	ErrEntryTooLarge = errors.New("entry too large")
)

// WrongPasswordError is returned by [Codec.Decode] when the cipher
// rejects an entry's body. Nothing has been unpacked when it is
// returned.
type WrongPasswordError struct {
	Filename string
	Err      error
}

func (err *WrongPasswordError) Error() string {
	return fmt.Sprintf("entry %q: cannot decrypt (wrong password?): %v", err.Filename, err.Err)
}

func (err *WrongPasswordError) Unwrap() error {
	return err.Err
}

// CorruptionError is returned by [Codec.Decode] when the decoded bytes
// do not hash to the digest stored in the header.
type CorruptionError struct {
	Filename string

	// KeySupplied records whether the entry was decoded through a
	// cipher, which makes a wrong key the likelier cause.
	KeySupplied bool

	Expected digest.Digest
	Actual   digest.Digest
}

func (err *CorruptionError) Error() string {
	cause := "file is damaged"
	if err.KeySupplied {
		cause = "possibly wrong password"
	}
	return fmt.Sprintf("entry %q: content digest mismatch, %s (stored %s, computed %s)",
		err.Filename, cause, err.Expected, err.Actual)
}

// IsWrongPassword reports whether err is or wraps a [WrongPasswordError].
func IsWrongPassword(err error) bool {
	var passwordError *WrongPasswordError
	return errors.As(err, &passwordError)
}

// IsCorruption reports whether err is or wraps a [CorruptionError].
func IsCorruption(err error) bool {
	var corruptionError *CorruptionError
	return errors.As(err, &corruptionError)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadFromPath reads a password from a file, or the first line of
// stdin when path is "-". Surrounding whitespace is trimmed. An empty
// result is an error. The caller must close the returned buffer.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readFirstLine(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading password file: %w", err)
	}
	return fromTrimmed(data)
}

func readFirstLine(r io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, errors.New("stdin is empty")
	}
	return fromTrimmed(scanner.Bytes())
}

// fromTrimmed moves the trimmed secret into a Buffer and zeroes all of
// data, including the whitespace around it.
func fromTrimmed(data []byte) (*Buffer, error) {
	defer Zero(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("secret is empty")
	}
	return NewFromBytes(trimmed)
}

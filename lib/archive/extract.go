// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/Axonny/HuffmanCoding/lib/entry"
)

// ExtractOptions configures [Extract].
type ExtractOptions struct {
	// Codec decodes each entry. Required.
	Codec *entry.Codec

	// Logger receives one line per entry. Defaults to a discard logger.
	Logger *slog.Logger
}

// Result is the outcome of extracting one entry.
type Result struct {
	Filename string

	// Size is the number of bytes written. Zero when Err is set.
	Size int

	// Err is the decode or write failure, nil on success. When set,
	// nothing was written for this entry.
	Err error
}

// Failed counts the results with an error.
func Failed(results []Result) int {
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
		}
	}
	return failed
}

// Extract decodes every entry of r into directory dir, creating
// subdirectories as entry names require.
//
// Entries are independent: a wrong password or a damaged body fails
// that entry's [Result] and extraction moves on to the next. Each file
// is written to a temporary name and renamed into place only after its
// digest verified, so a failed entry never leaves partial output. All
// writes go through an os.Root at dir and cannot escape it.
//
// The returned error is reserved for conditions that stop extraction
// entirely: an unusable dir, a malformed archive (the next entry
// cannot be located), or ctx being cancelled. Results gathered before
// such a failure are returned with it.
func Extract(ctx context.Context, r io.Reader, dir string, options ExtractOptions) ([]Result, error) {
	if options.Codec == nil {
		return nil, fmt.Errorf("archive: ExtractOptions.Codec is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = discardLogger
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening output directory: %w", err)
	}
	defer root.Close()

	var results []Result
	for next, err := range Scan(r) {
		if err != nil {
			return results, err
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := Result{Filename: next.Filename}
		data, err := options.Codec.Decode(next)
		if err == nil {
			err = writeAtomic(root, next.Filename, data)
		}
		if err != nil {
			result.Err = err
			logger.Warn("entry failed", "entry", next.Filename, "error", err)
		} else {
			result.Size = len(data)
			logger.Info("extracted", "entry", next.Filename, "bytes", len(data))
		}
		results = append(results, result)
	}
	return results, nil
}

// writeAtomic writes data to name inside root through a temporary file
// in the same directory, then renames it over name.
func writeAtomic(root *os.Root, name string, data []byte) error {
	directory := path.Dir(name)
	if directory != "." {
		if err := root.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", name, err)
		}
	}

	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return fmt.Errorf("generating temporary name: %w", err)
	}
	temporary := path.Join(directory, "."+path.Base(name)+".huff-"+hex.EncodeToString(suffix[:]))

	file, err := root.OpenFile(temporary, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	_, writeErr := file.Write(data)
	closeErr := file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		root.Remove(temporary)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := root.Rename(temporary, name); err != nil {
		root.Remove(temporary)
		return fmt.Errorf("renaming %s into place: %w", name, err)
	}
	return nil
}

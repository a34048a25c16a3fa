// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Axonny/HuffmanCoding/lib/entry"
)

// CompressOptions configures [CompressTree].
type CompressOptions struct {
	// Codec encodes each file. Required.
	Codec *entry.Codec

	// Include, when non-empty, keeps only files whose slash-separated
	// path relative to the root matches at least one doublestar
	// pattern. Exclude drops files matching any pattern and is applied
	// after Include. A directory matching an Exclude pattern is not
	// descended into.
	Include []string
	Exclude []string

	// Workers bounds how many files are read and encoded at once.
	// Defaults to GOMAXPROCS.
	Workers int

	// Logger receives per-file progress at debug level. Defaults to a
	// discard logger.
	Logger *slog.Logger
}

// Summary describes a finished compression.
type Summary struct {
	Entries     int
	InputBytes  int64
	OutputBytes int64
}

// ValidatePatterns reports the first malformed doublestar pattern.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// CompressFile encodes the file at path as a single entry named after
// its base name and writes it to w.
func CompressFile(path string, codec *entry.Codec, w io.Writer) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("reading %s: %w", path, err)
	}
	encoded, err := codec.Encode(filepath.Base(path), data)
	if err != nil {
		return Summary{}, err
	}
	writer := NewWriter(w)
	if err := writer.Add(encoded); err != nil {
		return Summary{}, err
	}
	return Summary{Entries: 1, InputBytes: int64(len(data)), OutputBytes: writer.Written()}, nil
}

// CompressTree encodes every regular file under root into w as one
// archive. Entries are named by their slash-separated path relative to
// root and appear in sorted path order regardless of how the parallel
// encoders finish. Symlinks and other non-regular files are skipped.
//
// The first failure stops the walk and is returned; entries already
// written to w stay there. Cancelling ctx stops between files.
func CompressTree(ctx context.Context, root string, w io.Writer, options CompressOptions) (Summary, error) {
	if options.Codec == nil {
		return Summary{}, fmt.Errorf("archive: CompressOptions.Codec is required")
	}
	if err := ValidatePatterns(options.Include); err != nil {
		return Summary{}, err
	}
	if err := ValidatePatterns(options.Exclude); err != nil {
		return Summary{}, err
	}
	logger := options.Logger
	if logger == nil {
		logger = discardLogger
	}

	names, err := collectFiles(os.DirFS(root), options.Include, options.Exclude, logger)
	if err != nil {
		return Summary{}, fmt.Errorf("walking %s: %w", root, err)
	}
	logger.Debug("collected files", "root", root, "files", len(names))

	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return encodeOrdered(ctx, names, w, workers, logger, func(name string) (*entry.Entry, int64, error) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return nil, 0, fmt.Errorf("reading %s: %w", name, err)
		}
		encoded, err := options.Codec.Encode(name, data)
		return encoded, int64(len(data)), err
	})
}

// collectFiles returns the sorted slash paths of the regular files in
// fsys that pass the filters.
func collectFiles(fsys fs.FS, include, exclude []string, logger *slog.Logger) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(name string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name == "." {
			return nil
		}
		if matchesAny(exclude, name) {
			if dirEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if dirEntry.IsDir() {
			return nil
		}
		if !dirEntry.Type().IsRegular() {
			logger.Debug("skipping non-regular file", "path", name, "mode", dirEntry.Type().String())
			return nil
		}
		if len(include) > 0 && !matchesAny(include, name) {
			return nil
		}
		names = append(names, name)
		return nil
	})
	slices.Sort(names)
	return names, err
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		// Patterns were validated up front, so Match cannot fail.
		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

type encodeResult struct {
	entry     *entry.Entry
	inputSize int64
	err       error
}

// encodeOrdered runs encode over names on a bounded pool and writes
// the results to w in the order of names. At most 2*workers encoded
// entries are held in memory waiting for their turn.
func encodeOrdered(ctx context.Context, names []string, w io.Writer, workers int, logger *slog.Logger,
	encode func(name string) (*entry.Entry, int64, error)) (Summary, error) {

	ctx, cancel := context.WithCancel(ctx)
	var wait sync.WaitGroup
	defer func() {
		cancel()
		wait.Wait()
	}()

	slots := make([]chan encodeResult, len(names))
	for i := range slots {
		slots[i] = make(chan encodeResult, 1)
	}
	window := make(chan struct{}, 2*workers)
	jobs := make(chan int)

	wait.Add(1)
	go func() {
		defer wait.Done()
		defer close(jobs)
		for i := range names {
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	for range workers {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					slots[i] <- encodeResult{err: err}
					continue
				}
				encoded, inputSize, err := encode(names[i])
				slots[i] <- encodeResult{entry: encoded, inputSize: inputSize, err: err}
			}
		}()
	}

	writer := NewWriter(w)
	var summary Summary
	for i, name := range names {
		var result encodeResult
		select {
		case result = <-slots[i]:
		case <-ctx.Done():
			return summary, ctx.Err()
		}
		if result.err != nil {
			return summary, result.err
		}
		if err := writer.Add(result.entry); err != nil {
			return summary, err
		}
		<-window

		summary.Entries++
		summary.InputBytes += result.inputSize
		summary.OutputBytes = writer.Written()
		logger.Debug("compressed", "entry", name, "symbols", result.entry.SymbolCount, "body_bytes", result.entry.BodyLength)
	}
	return summary, nil
}

var discardLogger = slog.New(slog.DiscardHandler)

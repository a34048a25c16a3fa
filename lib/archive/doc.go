// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive treats a sequence of concatenated entries as an
// archive. There is no archive header, count, or index: entries are
// appended with [Append] or a [Writer], and located by walking the
// header fields of each one in turn.
//
// Reading:
//
//   - [Split] locates entries in an in-memory archive without decoding.
//   - [Scan] streams complete entries from an io.Reader.
//   - [List] and [Inspect] read headers only, skipping bodies by
//     seeking when the reader allows it.
//   - [OpenFS] presents an archive as a read-only fs.FS, decoding a
//     file when it is opened.
//
// Batch operations used by the command line:
//
//   - [CompressFile] encodes one file as a single-entry archive.
//   - [CompressTree] encodes a directory tree in parallel, filtered
//     by doublestar patterns, appending entries in sorted path order.
//   - [Extract] decodes every entry into a directory, reporting a
//     [Result] per entry and writing each file atomically.
package archive

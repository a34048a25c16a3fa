// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes the content digest stored in every archive
// entry: the first 128 bits of a keyed BLAKE3 hash of the entry's
// original bytes, rendered as 32 lowercase hex characters.
//
// The key is a fixed domain separator, so a digest of the same bytes
// computed for another purpose never collides with an entry digest.
// [Sum] hashes a buffer in one call; [Hasher] accumulates writes.
// [Format] and [Parse] convert between [Digest] and its stored form.
package digest

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds archive passwords in memory the garbage
// collector never sees.
//
// [Buffer] allocates with mmap(MAP_ANONYMOUS), marks the region
// MADV_DONTDUMP, and locks it with mlock when RLIMIT_MEMLOCK allows.
// Close zeroes and unmaps it. Passwords enter a Buffer through one of:
//
//   - [ReadFromPath] -- a password file, or the first line of stdin for "-"
//   - [Prompt] -- the controlling terminal, without echo, optionally confirmed
//   - [NewFromBytes] -- copies and zeroes the source slice
//
// Depends on golang.org/x/sys/unix and golang.org/x/term.
package secret

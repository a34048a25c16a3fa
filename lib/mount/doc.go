// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mount serves an archive as a read-only FUSE filesystem.
//
// The mount mirrors the tree of an [archive.FS]: directories are
// implied by entry names, and every file reports the decoded size
// recorded in its entry header. Listing and stat never decode. The
// first open of a file decrypts, decodes and verifies its entry; the
// decoded content stays with the inode so later reads are served from
// memory and from the kernel page cache.
//
// Decode failures surface as errno values: a wrong password is EACCES,
// a damaged entry is EIO. All mutation returns EROFS.
package mount

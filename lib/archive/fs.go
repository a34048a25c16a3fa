// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/Axonny/HuffmanCoding/lib/entry"
)

// FS is a read-only fs.FS view of an archive. Entry names become the
// file tree; the directories are implied by the names. Opening a file
// decodes (and verifies) its entry; listing and Stat read only the
// headers indexed when the FS was created.
//
// When several entries share a name, the last one appended wins, the
// same outcome as extracting the archive in order.
type FS struct {
	reader io.ReaderAt
	codec  *entry.Codec
	root   *treeNode
}

var (
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
)

type treeNode struct {
	name     string
	dir      bool
	children map[string]*treeNode

	// listing is set for files.
	listing Listing
}

// OpenFS indexes the size bytes of archive r. Only headers are read.
// Returns an error for a malformed archive or when an entry name is
// used both as a file and as a directory.
func OpenFS(r io.ReaderAt, size int64, codec *entry.Codec) (*FS, error) {
	fsys := &FS{
		reader: r,
		codec:  codec,
		root:   &treeNode{name: ".", dir: true, children: map[string]*treeNode{}},
	}
	err := walkHeaders(io.NewSectionReader(r, 0, size), func(listing Listing) error {
		return fsys.add(listing)
	})
	if err != nil {
		return nil, err
	}
	return fsys, nil
}

func (f *FS) add(listing Listing) error {
	elements := strings.Split(listing.Filename, "/")
	parent := f.root
	for i, element := range elements[:len(elements)-1] {
		child, ok := parent.children[element]
		if !ok {
			child = &treeNode{name: element, dir: true, children: map[string]*treeNode{}}
			parent.children[element] = child
		}
		if !child.dir {
			return fmt.Errorf("entry %q: %q is also a file", listing.Filename, strings.Join(elements[:i+1], "/"))
		}
		parent = child
	}

	base := elements[len(elements)-1]
	if existing, ok := parent.children[base]; ok && existing.dir {
		return fmt.Errorf("entry %q: name is also a directory", listing.Filename)
	}
	parent.children[base] = &treeNode{name: base, listing: listing}
	return nil
}

func (f *FS) lookup(op, name string) (*treeNode, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	current := f.root
	if name == "." {
		return current, nil
	}
	for element := range strings.SplitSeq(name, "/") {
		if !current.dir {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		child, ok := current.children[element]
		if !ok {
			return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
		}
		current = child
	}
	return current, nil
}

// Open implements fs.FS.
func (f *FS) Open(name string) (fs.File, error) {
	node, err := f.lookup("open", name)
	if err != nil {
		return nil, err
	}
	if node.dir {
		return &openDir{node: node, entries: sortedEntries(node)}, nil
	}
	data, err := f.decode(node)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &openFile{node: node, reader: bytes.NewReader(data)}, nil
}

// ReadFile implements fs.ReadFileFS. Each call decodes afresh and
// returns a buffer owned by the caller.
func (f *FS) ReadFile(name string) ([]byte, error) {
	node, err := f.lookup("readfile", name)
	if err != nil {
		return nil, err
	}
	if node.dir {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: errIsDirectory}
	}
	data, err := f.decode(node)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// ReadDir implements fs.ReadDirFS.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	node, err := f.lookup("readdir", name)
	if err != nil {
		return nil, err
	}
	if !node.dir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errNotDirectory}
	}
	return sortedEntries(node), nil
}

// Stat implements fs.StatFS without decoding.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	node, err := f.lookup("stat", name)
	if err != nil {
		return nil, err
	}
	return nodeInfo{node}, nil
}

// Listing returns the header of the entry behind a file name.
func (f *FS) Listing(name string) (Listing, error) {
	node, err := f.lookup("stat", name)
	if err != nil {
		return Listing{}, err
	}
	if node.dir {
		return Listing{}, &fs.PathError{Op: "stat", Path: name, Err: errIsDirectory}
	}
	return node.listing, nil
}

func (f *FS) decode(node *treeNode) ([]byte, error) {
	body := make([]byte, node.listing.BodyLength)
	bodyStart := node.listing.Offset + int64(node.listing.Size())
	if read, err := f.reader.ReadAt(body, bodyStart); read < len(body) {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return f.codec.Decode(&entry.Entry{Header: node.listing.Header, Body: body})
}

var (
	errIsDirectory  = errors.New("is a directory")
	errNotDirectory = errors.New("not a directory")
)

func sortedEntries(node *treeNode) []fs.DirEntry {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	slices.Sort(names)
	entries := make([]fs.DirEntry, len(names))
	for i, name := range names {
		entries[i] = nodeInfo{node.children[name]}
	}
	return entries
}

// nodeInfo is both the fs.FileInfo and the fs.DirEntry of a node.
type nodeInfo struct {
	node *treeNode
}

func (i nodeInfo) Name() string { return i.node.name }

func (i nodeInfo) Size() int64 {
	if i.node.dir {
		return 0
	}
	return int64(i.node.listing.SymbolCount)
}

func (i nodeInfo) Mode() fs.FileMode {
	if i.node.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (i nodeInfo) ModTime() time.Time         { return time.Time{} }
func (i nodeInfo) IsDir() bool                { return i.node.dir }
func (i nodeInfo) Sys() any                   { return nil }
func (i nodeInfo) Type() fs.FileMode          { return i.Mode().Type() }
func (i nodeInfo) Info() (fs.FileInfo, error) { return i, nil }
func (i nodeInfo) String() string             { return fs.FormatFileInfo(i) }

type openFile struct {
	node   *treeNode
	reader *bytes.Reader
}

func (f *openFile) Stat() (fs.FileInfo, error) { return nodeInfo{f.node}, nil }
func (f *openFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *openFile) Close() error               { return nil }

func (f *openFile) ReadAt(p []byte, offset int64) (int, error) {
	return f.reader.ReadAt(p, offset)
}

func (f *openFile) Seek(offset int64, whence int) (int64, error) {
	return f.reader.Seek(offset, whence)
}

type openDir struct {
	node    *treeNode
	entries []fs.DirEntry
	offset  int
}

func (d *openDir) Stat() (fs.FileInfo, error) { return nodeInfo{d.node}, nil }
func (d *openDir) Close() error               { return nil }

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.node.name, Err: errIsDirectory}
}

func (d *openDir) ReadDir(count int) ([]fs.DirEntry, error) {
	remaining := d.entries[d.offset:]
	if count <= 0 {
		d.offset = len(d.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	count = min(count, len(remaining))
	d.offset += count
	return remaining[:count], nil
}

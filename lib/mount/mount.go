// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/Axonny/HuffmanCoding/lib/entry"
)

// Source is the file tree served by the mount. [archive.FS] satisfies
// it.
type Source interface {
	fs.ReadDirFS
	fs.ReadFileFS
	fs.StatFS
}

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted. It
	// is created if it does not exist.
	Mountpoint string

	// Source provides the files.
	Source Source

	// Name appears as the filesystem source in the mount table.
	// Defaults to "huff".
	Name string

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives decode failures. If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Mount serves options.Source read-only at options.Mountpoint. The
// caller must call Unmount on the returned server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if options.Name == "" {
		options.Name = "huff"
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	// Archive content never changes under a mount, so the kernel may
	// cache names and attributes for as long as it likes.
	entryTimeout := time.Hour
	attrTimeout := time.Hour
	negativeTimeout := time.Hour

	root := &dirNode{options: &options, name: "."}
	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     options.Name,
			Name:       "huff",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("archive mounted", "mountpoint", options.Mountpoint)
	return server, nil
}

// dirNode is a directory of the source. Children are looked up on
// demand.
type dirNode struct {
	gofuse.Inode
	options *Options
	name    string // slash-separated path within the source, "." for the root
}

var _ gofuse.InodeEmbedder = (*dirNode)(nil)
var _ gofuse.NodeLookuper = (*dirNode)(nil)
var _ gofuse.NodeReaddirer = (*dirNode)(nil)
var _ gofuse.NodeGetattrer = (*dirNode)(nil)

func (d *dirNode) child(name string) string {
	if d.name == "." {
		return name
	}
	return path.Join(d.name, name)
}

func (d *dirNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o555
	return 0
}

func (d *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	full := d.child(name)
	info, err := d.options.Source.Stat(full)
	if err != nil {
		return nil, errno(err)
	}

	if info.IsDir() {
		out.Mode = syscall.S_IFDIR | 0o555
		child := d.NewPersistentInode(ctx, &dirNode{options: d.options, name: full},
			gofuse.StableAttr{Mode: syscall.S_IFDIR})
		return child, 0
	}

	node := &fileNode{options: d.options, name: full, size: info.Size()}
	node.fill(&out.Attr)
	child := d.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG})
	return child, 0
}

func (d *dirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	children, err := d.options.Source.ReadDir(d.name)
	if err != nil {
		return nil, errno(err)
	}
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, child := range children {
		mode := uint32(syscall.S_IFREG)
		if child.IsDir() {
			mode = syscall.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: child.Name(), Mode: mode})
	}
	return gofuse.NewListDirStream(entries), 0
}

// fileNode is one file of the source. Its content is decoded on first
// open and kept for the lifetime of the inode.
type fileNode struct {
	gofuse.Inode
	options *Options
	name    string
	size    int64

	mu      sync.Mutex
	content []byte
}

var _ gofuse.InodeEmbedder = (*fileNode)(nil)
var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)
var _ gofuse.NodeReader = (*fileNode)(nil)

func (n *fileNode) fill(out *fuse.Attr) {
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(n.size)
	out.Blocks = (out.Size + 511) / 512
}

func (n *fileNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	n.fill(&out.Attr)
	return 0
}

func (n *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	if _, err := n.load(); err != nil {
		n.options.Logger.Error("decoding entry failed", "name", n.name, "error", err)
		return nil, 0, errno(err)
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fileNode) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	content, err := n.load()
	if err != nil {
		return nil, errno(err)
	}
	if off >= int64(len(content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := min(off+int64(len(dest)), int64(len(content)))
	return fuse.ReadResultData(content[off:end]), 0
}

func (n *fileNode) load() ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.content != nil {
		return n.content, nil
	}
	content, err := n.options.Source.ReadFile(n.name)
	if err != nil {
		return nil, err
	}
	n.content = content
	return content, nil
}

// errno maps a source error to the errno reported to the kernel.
func errno(err error) syscall.Errno {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return syscall.ENOENT
	case errors.Is(err, fs.ErrInvalid):
		return syscall.EINVAL
	case entry.IsWrongPassword(err):
		return syscall.EACCES
	default:
		return syscall.EIO
	}
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archivefs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/zarcfile/zarc/lib/archive"
	"github.com/zarcfile/zarc/lib/directory"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Archive is the opened, verified archive to project.
	Archive *archive.Reader

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Mount builds the file tree from the archive's directory and mounts
// it at the configured mountpoint. The caller must call Unmount on
// the returned Server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("archivefs: mountpoint is required")
	}
	if options.Archive == nil {
		return nil, fmt.Errorf("archivefs: archive is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("archivefs: creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := newDirNode()
	for _, entry := range options.Archive.Files() {
		insert(root, entry, options.Archive)
	}

	entryTimeout := time.Hour
	attrTimeout := time.Hour

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout: &entryTimeout,
		AttrTimeout:  &attrTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "zarc",
			Name:       "zarc",
			AllowOther: options.AllowOther,
			Options:    []string{"ro"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archivefs: mounting at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("archive mounted read-only", "mountpoint", options.Mountpoint)
	return server, nil
}

// dirNode is a directory in the projected tree. Children are attached
// eagerly at build time via AddChild, so Lookup needs no dynamic
// resolution.
type dirNode struct {
	gofuse.Inode
}

func newDirNode() *dirNode {
	return &dirNode{}
}

var _ gofuse.InodeEmbedder = (*dirNode)(nil)

// fileNode is a regular file in the projected tree. Content is
// decompressed lazily on first Open and cached for the node's
// lifetime, since a mounted archive is read-only and its content
// never changes underneath the node.
type fileNode struct {
	gofuse.Inode

	archive *archive.Reader
	entry   directory.FileEntry

	mu      sync.Mutex
	content []byte
	loaded  bool
}

var _ gofuse.InodeEmbedder = (*fileNode)(nil)
var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)
var _ gofuse.NodeReader = (*fileNode)(nil)

// linkNode is a symlink in the projected tree, whose target is known
// at build time from the directory's Special.Target.
type linkNode struct {
	gofuse.Inode
	target string
}

var _ gofuse.InodeEmbedder = (*linkNode)(nil)
var _ gofuse.NodeReadlinker = (*linkNode)(nil)

func (l *linkNode) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	return []byte(l.target), 0
}

// insert attaches entry's node at its path within root, creating
// intermediate directory nodes as needed.
func insert(root *dirNode, entry directory.FileEntry, reader *archive.Reader) {
	if len(entry.Path) == 0 {
		return
	}

	dir := root
	for _, component := range entry.Path[:len(entry.Path)-1] {
		dir = descendNamed(dir, component.String())
	}

	name := entry.Path[len(entry.Path)-1].String()
	ctx := context.Background()

	switch {
	case entry.Special == nil:
		node := &fileNode{archive: reader, entry: entry}
		child := dir.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG})
		dir.AddChild(name, child, true)
	case entry.Special.Kind == directory.SpecialDirectory:
		descendNamed(dir, name)
	case entry.Special.Kind.IsSymlink():
		node := &linkNode{target: entry.Special.Target}
		child := dir.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFLNK})
		dir.AddChild(name, child, true)
	default:
		// Hardlinks have no independent FUSE representation here;
		// the file they point at is projected under its own path.
	}
}

// descendNamed returns the child directory node named name under dir,
// creating it if absent.
func descendNamed(dir *dirNode, name string) *dirNode {
	if existing := dir.GetChild(name); existing != nil {
		if child, ok := existing.Operations().(*dirNode); ok {
			return child
		}
	}
	child := newDirNode()
	inode := dir.NewPersistentInode(context.Background(), child, gofuse.StableAttr{Mode: syscall.S_IFDIR})
	dir.AddChild(name, inode, true)
	return child
}

func (f *fileNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = f.entry.Size
	out.Blocks = (out.Size + 511) / 512
	return 0
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	if err := f.ensureLoaded(); err != nil {
		return nil, 0, syscall.EIO
	}
	return nil, 0, 0
}

func (f *fileNode) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := f.ensureLoaded(); err != nil {
		return nil, syscall.EIO
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if off >= int64(len(f.content)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(f.content)) {
		end = int64(len(f.content))
	}
	return fuse.ReadResultData(f.content[off:end]), 0
}

func (f *fileNode) ensureLoaded() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return nil
	}
	reader, err := f.archive.ExtractFile(f.entry)
	if err != nil {
		return err
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.content = content
	f.loaded = true
	return nil
}

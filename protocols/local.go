package protocols

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// BillyFileSystem serves a disk from a go-billy filesystem. The local driver
// uses osfs chrooted at the disk root, the memory driver uses memfs.
type BillyFileSystem struct {
	fs     billy.Filesystem
	driver string
}

func NewLocalFileSystem(root string) (*BillyFileSystem, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return &BillyFileSystem{fs: osfs.New(root), driver: "local"}, nil
}

func NewMemoryFileSystem() *BillyFileSystem {
	return &BillyFileSystem{fs: memfs.New(), driver: "memory"}
}

// Billy exposes the underlying filesystem, mostly for seeding memory disks.
func (b *BillyFileSystem) Billy() billy.Filesystem {
	return b.fs
}

func (b *BillyFileSystem) abs(p string) string {
	return "/" + CleanPath(p)
}

func (b *BillyFileSystem) List(_ context.Context, dir string) ([]Entry, error) {
	infos, err := b.fs.ReadDir(b.abs(dir))
	if err != nil {
		return nil, fmt.Errorf("%s: read dir %q: %w", b.driver, dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fileInfoEntry(dir, info))
	}
	return entries, nil
}

func (b *BillyFileSystem) FileSize(_ context.Context, p string) (int64, error) {
	info, err := b.fs.Stat(b.abs(p))
	if err != nil {
		return 0, fmt.Errorf("%s: stat %q: %w", b.driver, p, err)
	}
	return info.Size(), nil
}

func (b *BillyFileSystem) LastModified(_ context.Context, p string) (time.Time, error) {
	info, err := b.fs.Stat(b.abs(p))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: stat %q: %w", b.driver, p, err)
	}
	return info.ModTime(), nil
}

func (b *BillyFileSystem) Capabilities() Capabilities {
	return Capabilities{DirectoryMetadata: true}
}

func (b *BillyFileSystem) Close() error {
	return nil
}

// fileInfoEntry converts an os.FileInfo from a directory read into an Entry.
// Shared by the billy and sftp drivers, which both report full stat data.
func fileInfoEntry(dir string, info os.FileInfo) Entry {
	e := Entry{
		Path:       JoinPath(dir, info.Name()),
		Kind:       KindFile,
		ModTime:    info.ModTime(),
		HasModTime: !info.ModTime().IsZero(),
	}
	if info.IsDir() {
		e.Kind = KindDir
	}
	e.Size = info.Size()
	e.HasSize = true
	return e
}

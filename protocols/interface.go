package protocols

import (
	"context"
	"path"
	"strings"
	"time"
)

type Kind int

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry is one item of a directory listing. Size and ModTime are only
// meaningful when the matching Has* flag is set; drivers leave them unset
// when the listing call did not report them.
type Entry struct {
	Path       string // relative to the disk root, "/" separated, no leading slash
	Kind       Kind
	Size       int64
	HasSize    bool
	ModTime    time.Time
	HasModTime bool
}

func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// Base returns the last element of the entry path.
func (e Entry) Base() string {
	return path.Base("/" + e.Path)
}

// Dir returns the parent of the entry path; "" for entries at the root.
// JoinPath(e.Dir(), e.Base()) always gives back e.Path.
func (e Entry) Dir() string {
	d := path.Dir(e.Path)
	if d == "." {
		return ""
	}
	return d
}

// Capabilities declares what a driver can report about its entries. Whether a
// listing already carried size and mtime is tracked per entry by HasSize and
// HasModTime.
type Capabilities struct {
	// DirectoryMetadata is false when the backend has no size or mtime for
	// directories at all, e.g. object stores where directories are prefixes.
	DirectoryMetadata bool
}

// FileSystem is a read-only storage backend rooted at a disk root.
type FileSystem interface {
	// List returns the entries of a directory (non-recursive) in backend order.
	List(ctx context.Context, dir string) ([]Entry, error)
	FileSize(ctx context.Context, p string) (int64, error)
	LastModified(ctx context.Context, p string) (time.Time, error)
	Capabilities() Capabilities
	Close() error
}

// CleanPath normalizes a user or backend path to the relative form used by
// Entry.Path. The root is "".
func CleanPath(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

// JoinPath joins a directory and a name the way Entry.Path expects.
func JoinPath(dir, name string) string {
	return CleanPath(dir + "/" + name)
}

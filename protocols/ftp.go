package protocols

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

type FTPFileSystem struct {
	Host     string
	Port     int
	User     string
	Password string
	RootPath string
	Timeout  time.Duration
	conn     *ftp.ServerConn
}

func (f *FTPFileSystem) Init(ctx context.Context) error {
	timeout := f.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	addr := fmt.Sprintf("%s:%d", f.Host, f.Port)
	c, err := ftp.Dial(addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return err
	}

	if err := c.Login(f.User, f.Password); err != nil {
		c.Quit()
		return err
	}
	f.conn = c
	return nil
}

func (f *FTPFileSystem) Close() error {
	if f.conn != nil {
		return f.conn.Quit()
	}
	return nil
}

func (f *FTPFileSystem) full(relPath string) string {
	return path.Join("/", f.RootPath, CleanPath(relPath))
}

func (f *FTPFileSystem) List(_ context.Context, relPath string) ([]Entry, error) {
	entries, err := f.conn.List(f.full(relPath))
	if err != nil {
		return nil, fmt.Errorf("ftp: list %q: %w", relPath, err)
	}

	files := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if e, ok := ftpEntry(relPath, entry); ok {
			files = append(files, e)
		}
	}
	return files, nil
}

// ftpEntry maps a LIST/MLSD line. Directory sizes from LIST are block counts,
// not content sizes, so they are dropped. Servers that print no parsable date
// leave Time zero; that mtime is treated as missing.
func ftpEntry(relPath string, entry *ftp.Entry) (Entry, bool) {
	if entry.Name == "." || entry.Name == ".." {
		return Entry{}, false
	}
	e := Entry{
		Path:       JoinPath(relPath, entry.Name),
		Kind:       KindFile,
		ModTime:    entry.Time,
		HasModTime: !entry.Time.IsZero(),
	}
	if entry.Type == ftp.EntryTypeFolder {
		e.Kind = KindDir
	} else {
		e.Size = int64(entry.Size)
		e.HasSize = true
	}
	return e, true
}

func (f *FTPFileSystem) FileSize(_ context.Context, relPath string) (int64, error) {
	size, err := f.conn.FileSize(f.full(relPath))
	if err != nil {
		return 0, fmt.Errorf("ftp: size %q: %w", relPath, err)
	}
	return size, nil
}

func (f *FTPFileSystem) LastModified(_ context.Context, relPath string) (time.Time, error) {
	t, err := f.conn.GetTime(f.full(relPath))
	if err != nil {
		return time.Time{}, fmt.Errorf("ftp: mdtm %q: %w", relPath, err)
	}
	return t, nil
}

// Capabilities reports no directory metadata: SIZE and MDTM are defined for
// files only.
func (f *FTPFileSystem) Capabilities() Capabilities {
	return Capabilities{DirectoryMetadata: false}
}

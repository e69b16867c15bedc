package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storagels/protocols"
)

var errStub = errors.New("stub: unsupported")

// stubFS serves fixed listings and counts follow-up metadata calls.
type stubFS struct {
	dirs      map[string][]protocols.Entry
	sizes     map[string]int64
	mtimes    map[string]time.Time
	failSize  bool
	failMtime bool
	caps      protocols.Capabilities

	listCalls  []string
	sizeCalls  int
	mtimeCalls int
	closed     bool
}

func newStubFS() *stubFS {
	return &stubFS{
		dirs:   map[string][]protocols.Entry{},
		sizes:  map[string]int64{},
		mtimes: map[string]time.Time{},
		caps:   protocols.Capabilities{DirectoryMetadata: true},
	}
}

func (s *stubFS) List(_ context.Context, dir string) ([]protocols.Entry, error) {
	s.listCalls = append(s.listCalls, dir)
	entries, ok := s.dirs[protocols.CleanPath(dir)]
	if !ok {
		return nil, fmt.Errorf("stub: %s: %w", dir, errNotFound)
	}
	return entries, nil
}

var errNotFound = errors.New("not found")

func (s *stubFS) FileSize(_ context.Context, p string) (int64, error) {
	s.sizeCalls++
	if s.failSize {
		return 0, errStub
	}
	size, ok := s.sizes[p]
	if !ok {
		return 0, errNotFound
	}
	return size, nil
}

func (s *stubFS) LastModified(_ context.Context, p string) (time.Time, error) {
	s.mtimeCalls++
	if s.failMtime {
		return time.Time{}, errStub
	}
	t, ok := s.mtimes[p]
	if !ok {
		return time.Time{}, errNotFound
	}
	return t, nil
}

func (s *stubFS) Capabilities() protocols.Capabilities {
	return s.caps
}

func (s *stubFS) Close() error {
	s.closed = true
	return nil
}

func fileEntry(p string) protocols.Entry {
	return protocols.Entry{Path: p, Kind: protocols.KindFile}
}

func dirEntry(p string) protocols.Entry {
	return protocols.Entry{Path: p, Kind: protocols.KindDir}
}

func eagerFile(p string, size int64, unix int64) protocols.Entry {
	return protocols.Entry{
		Path:       p,
		Kind:       protocols.KindFile,
		Size:       size,
		HasSize:    true,
		ModTime:    time.Unix(unix, 0),
		HasModTime: true,
	}
}

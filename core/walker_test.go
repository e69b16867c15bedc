package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storagels/protocols"
)

// collect drains a walk into its lines and errors.
func collect(t *testing.T, fs protocols.FileSystem, req ListingRequest) ([]Line, []error) {
	t.Helper()
	var lines []Line
	var errs []error
	for line, err := range Walk(context.Background(), fs, req) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		lines = append(lines, line)
	}
	return lines, errs
}

func texts(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Text)
	}
	return out
}

func TestWalk_EndToEnd(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{eagerFile("a.txt", 10, 1700000000), dirEntry("sub")}
	fs.dirs["sub"] = []protocols.Entry{eagerFile("sub/b.txt", 5, 1700000000)}

	lines, errs := collect(t, fs, ListingRequest{Path: "/", Recursive: true, LongFormat: true})
	require.Empty(t, errs)

	assert.Equal(t, []string{
		"/:",
		"-         10 2023-11-14 22:13:20 a.txt",
		"d          0                     sub",
		"",
		"sub:",
		"-          5 2023-11-14 22:13:20 b.txt",
	}, texts(lines))
	assert.Equal(t, LineHeader, lines[0].Kind)
	assert.Equal(t, protocols.KindDir, lines[2].EntryKind)
	assert.Equal(t, LineSeparator, lines[3].Kind)
}

func TestWalk_PreservesBackendOrder(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{fileEntry("b"), fileEntry("a"), fileEntry("c")}

	lines, errs := collect(t, fs, ListingRequest{Path: "/"})
	require.Empty(t, errs)
	assert.Equal(t, []string{"b", "a", "c"}, texts(lines))
}

func TestWalk_RecursionOrder(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{dirEntry("z"), fileEntry("f1"), dirEntry("a")}
	fs.dirs["z"] = []protocols.Entry{dirEntry("z/deep"), fileEntry("z/f2")}
	fs.dirs["z/deep"] = []protocols.Entry{fileEntry("z/deep/f3")}
	fs.dirs["a"] = []protocols.Entry{}

	lines, errs := collect(t, fs, ListingRequest{Path: "/", Recursive: true})
	require.Empty(t, errs)

	assert.Equal(t, []string{
		"/:", "z", "f1", "a",
		"", "z:", "deep", "f2",
		"", "z/deep:", "f3",
		"", "a:",
	}, texts(lines))
	assert.Equal(t, []string{"/", "z", "z/deep", "a"}, fs.listCalls)
}

func TestWalk_HeadersAndSeparators(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{dirEntry("a"), dirEntry("b")}
	fs.dirs["a"] = []protocols.Entry{dirEntry("a/c")}
	fs.dirs["a/c"] = nil
	fs.dirs["b"] = nil

	lines, errs := collect(t, fs, ListingRequest{Path: "/", Recursive: true})
	require.Empty(t, errs)

	var headers, separators int
	for _, l := range lines {
		switch l.Kind {
		case LineHeader:
			headers++
		case LineSeparator:
			separators++
		}
	}
	assert.Equal(t, 4, headers)
	assert.Equal(t, 3, separators)
	assert.Equal(t, LineHeader, lines[0].Kind)
}

func TestWalk_NonRecursiveDoesNotDescend(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{dirEntry("sub"), fileEntry("a")}
	fs.dirs["sub"] = []protocols.Entry{fileEntry("sub/b")}

	lines, errs := collect(t, fs, ListingRequest{Path: "/"})
	require.Empty(t, errs)
	assert.Equal(t, []string{"sub", "a"}, texts(lines))
	assert.Equal(t, []string{"/"}, fs.listCalls)
}

func TestWalk_EmptyRoot(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = nil

	lines, errs := collect(t, fs, ListingRequest{Path: "/"})
	assert.Empty(t, errs)
	assert.Empty(t, lines)

	lines, errs = collect(t, fs, ListingRequest{Path: "/", Recursive: true})
	assert.Empty(t, errs)
	assert.Equal(t, []string{"/:"}, texts(lines))
}

func TestWalk_ShortFormatMakesNoFollowUps(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{fileEntry("a"), dirEntry("d")}
	fs.dirs["d"] = []protocols.Entry{fileEntry("d/b")}

	_, errs := collect(t, fs, ListingRequest{Path: "/", Recursive: true})
	require.Empty(t, errs)
	assert.Zero(t, fs.sizeCalls)
	assert.Zero(t, fs.mtimeCalls)
}

func TestWalk_FailingSizeStillListsEveryFile(t *testing.T) {
	fs := newStubFS()
	fs.failSize = true
	fs.failMtime = true
	fs.dirs[""] = []protocols.Entry{fileEntry("a"), fileEntry("b")}

	lines, errs := collect(t, fs, ListingRequest{Path: "/", LongFormat: true})
	require.Empty(t, errs)
	assert.Equal(t, []string{
		"-          0                     a",
		"-          0                     b",
	}, texts(lines))
}

func TestWalk_ListErrorKeepsSiblings(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{dirEntry("broken"), dirEntry("ok")}
	fs.dirs["ok"] = []protocols.Entry{fileEntry("ok/x")}

	lines, errs := collect(t, fs, ListingRequest{Path: "/", Recursive: true})

	require.Len(t, errs, 1)
	var le *ListError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, "broken", le.Path)
	assert.ErrorIs(t, errs[0], errNotFound)

	assert.Equal(t, []string{"/:", "broken", "ok", "", "broken:", "", "ok:", "x"}, texts(lines))
}

func TestWalk_RootListError(t *testing.T) {
	fs := newStubFS()

	lines, errs := collect(t, fs, ListingRequest{Path: "/missing"})
	assert.Empty(t, lines)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], errNotFound)
}

func TestWalk_StopsWhenConsumerBreaks(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{fileEntry("a"), fileEntry("b"), dirEntry("c")}
	fs.dirs["c"] = []protocols.Entry{fileEntry("c/d")}

	var got []string
	for line, err := range Walk(context.Background(), fs, ListingRequest{Path: "/", Recursive: true}) {
		require.NoError(t, err)
		got = append(got, line.Text)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"/:", "a"}, got)
	assert.Equal(t, []string{"/"}, fs.listCalls)
}

func TestWalk_Cancelled(t *testing.T) {
	fs := newStubFS()
	fs.dirs[""] = []protocols.Entry{fileEntry("a")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range Walk(ctx, fs, ListingRequest{Path: "/"}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.Empty(t, fs.listCalls)
}

func TestWalk_StartPathIsNormalised(t *testing.T) {
	fs := newStubFS()
	fs.dirs["sub"] = []protocols.Entry{dirEntry("sub/x")}
	fs.dirs["sub/x"] = []protocols.Entry{fileEntry("sub/x/f")}

	lines, errs := collect(t, fs, ListingRequest{Path: "/sub/", Recursive: true})
	assert.Empty(t, errs)
	assert.Equal(t, []string{"sub:", "x", "", "sub/x:", "f"}, texts(lines))
	assert.Equal(t, []string{"sub", "sub/x"}, fs.listCalls)

	lines, _ = collect(t, newStubFS(), ListingRequest{Path: "//./", Recursive: true})
	assert.Equal(t, []string{"/:"}, texts(lines))
}

package core

import (
	"context"
	"iter"

	"storagels/protocols"
)

type LineKind int

const (
	LineEntry LineKind = iota
	LineHeader
	LineSeparator
)

// Line is one line of listing output.
type Line struct {
	Kind LineKind
	Text string
	// Entry kind for LineEntry lines, so callers can style directories.
	EntryKind protocols.Kind
}

// ListingRequest is fixed for the duration of one walk.
type ListingRequest struct {
	Path       string
	Recursive  bool
	LongFormat bool
}

// Walk lists req.Path and, when recursive, every directory below it. Entries
// of a directory are emitted in backend order before any of its
// subdirectories is entered; subdirectories are then walked depth-first in
// the order they were listed.
//
// A listing failure is yielded as a *ListError and the walk carries on with
// the remaining directories. Cancelling ctx stops the walk before the next
// directory with ctx.Err().
func Walk(ctx context.Context, fs protocols.FileSystem, req ListingRequest) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		start := protocols.CleanPath(req.Path)
		if start == "" {
			start = "/"
		}

		// Explicit stack instead of recursion; children are pushed in
		// reverse so the first listed subdirectory is popped first.
		stack := []string{start}
		visited := 0

		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				yield(Line{}, err)
				return
			}

			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if req.Recursive {
				if visited > 0 && !yield(Line{Kind: LineSeparator}, nil) {
					return
				}
				if !yield(Line{Kind: LineHeader, Text: dir + ":"}, nil) {
					return
				}
			}
			visited++

			entries, err := fs.List(ctx, dir)
			if err != nil {
				if !yield(Line{}, &ListError{Path: dir, Err: err}) {
					return
				}
				continue
			}

			var subdirs []string
			for _, entry := range entries {
				rec := Resolve(ctx, fs, entry, req.LongFormat)
				line := Line{Kind: LineEntry, Text: Render(rec, req.LongFormat), EntryKind: entry.Kind}
				if !yield(line, nil) {
					return
				}
				if entry.IsDir() {
					subdirs = append(subdirs, entry.Path)
				}
			}

			if req.Recursive {
				for i := len(subdirs) - 1; i >= 0; i-- {
					stack = append(stack, subdirs[i])
				}
			}
		}
	}
}

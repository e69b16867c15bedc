package core

import (
	"context"

	"go.uber.org/zap"

	"storagels/logging"
	"storagels/protocols"
)

// Record is an Entry whose metadata has been resolved. A false Has* flag
// means the value is unavailable, which is a valid final state.
type Record struct {
	protocols.Entry
}

// Resolve fills in metadata for one entry. It never fails: follow-up errors
// degrade the field to unavailable.
//
// Follow-up calls are only made in long format, only for fields the listing
// left out, and only for directories when the backend reports directory
// metadata at all.
func Resolve(ctx context.Context, fs protocols.FileSystem, entry protocols.Entry, longFormat bool) Record {
	rec := Record{Entry: entry}
	if !longFormat {
		return rec
	}
	if entry.IsDir() && !fs.Capabilities().DirectoryMetadata {
		return rec
	}

	if !rec.HasSize {
		size, err := fs.FileSize(ctx, entry.Path)
		if err != nil {
			logging.L().Debug("size unavailable", zap.String("path", entry.Path), zap.Error(err))
		} else {
			rec.Size, rec.HasSize = size, true
		}
	}

	if !rec.HasModTime {
		mtime, err := fs.LastModified(ctx, entry.Path)
		if err != nil || mtime.IsZero() {
			logging.L().Debug("mtime unavailable", zap.String("path", entry.Path), zap.Error(err))
		} else {
			rec.ModTime, rec.HasModTime = mtime, true
		}
	}
	return rec
}

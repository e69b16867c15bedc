package core

import (
	"fmt"
	"strings"
	"time"
)

// blankTimestamp pads a missing time to the width of time.DateTime.
var blankTimestamp = strings.Repeat(" ", len(time.DateTime))

// Render formats one record as a listing line.
//
// Long format is "<flag> <size:10> <YYYY-MM-DD HH:MM:SS> <name>" with flag
// "d" for directories and "-" for files. Unavailable sizes print as 0 and
// unavailable times as blanks. Short format is the name alone; callers that
// style directories differently look at rec.Kind.
func Render(rec Record, longFormat bool) string {
	name := rec.Base()
	if !longFormat {
		return name
	}

	flag := "-"
	if rec.IsDir() {
		flag = "d"
	}

	var size int64
	if rec.HasSize {
		size = rec.Size
	}

	ts := blankTimestamp
	if rec.HasModTime {
		ts = timestamp(rec.ModTime)
	}

	return fmt.Sprintf("%s %10d %s %s", flag, size, ts, name)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.DateTime)
}

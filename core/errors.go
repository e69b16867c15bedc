package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoDisks     = errors.New("no disks defined on this system")
	ErrUnknownDisk = errors.New("disk does not exist")
)

// ListError reports a directory that could not be listed.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

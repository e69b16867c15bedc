package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"storagels/config"
	"storagels/logging"
	"storagels/protocols"
)

// Options are the parsed command-line arguments of one listing.
type Options struct {
	Disk       string // -disk; empty when not given
	Path       string // positional path, may carry a "disk:" prefix
	LongFormat bool
	Recursive  bool
}

// Command lists a disk from the configured disk table.
type Command struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
	// Open connects a disk; OpenDisk when nil.
	Open func(ctx context.Context, disk config.Disk) (protocols.FileSystem, error)
}

// Run executes one listing and returns the process exit code. Only a missing
// disk table is fatal; open and listing failures are reported on Stderr and
// still exit 0.
func (c *Command) Run(ctx context.Context, opts Options) int {
	if c.Config == nil || len(c.Config.Disks) == 0 {
		fmt.Fprintln(c.Stderr, ErrNoDisks)
		return 1
	}

	name, dir, err := c.selectDisk(opts)
	if err != nil {
		fmt.Fprintln(c.Stderr, err)
	}
	if name == "" {
		c.printDisks()
		return 0
	}

	disk, _ := c.Config.Lookup(name)
	open := c.Open
	if open == nil {
		open = OpenDisk
	}

	logger := logging.L().With(zap.String("disk", name), zap.String("driver", disk.Driver))
	fs, err := open(ctx, disk)
	if err != nil {
		logger.Error("open disk", zap.Error(err))
		fmt.Fprintf(c.Stderr, "Cannot open disk %q: %v\n", name, err)
		return 0
	}
	defer closeDisk(name, fs)
	caps := fs.Capabilities()
	logger.Debug("disk opened",
		zap.String("path", dir),
		zap.Bool("directory_metadata", caps.DirectoryMetadata),
	)

	req := ListingRequest{Path: dir, Recursive: opts.Recursive, LongFormat: opts.LongFormat}
	failures := 0
	for line, err := range Walk(ctx, fs, req) {
		if err != nil {
			failures++
			var le *ListError
			if errors.As(err, &le) {
				logger.Error("list directory", zap.String("path", le.Path), zap.Error(le.Err))
			}
			fmt.Fprintln(c.Stderr, err)
			continue
		}
		fmt.Fprintln(c.Stdout, line.Text)
	}

	if failures > 0 {
		logger.Warn("listing incomplete", zap.Int("failed_dirs", failures))
	}
	return 0
}

// selectDisk picks the disk and path to list. An empty name means the disk
// table should be shown instead; err carries the message for a bad -disk.
func (c *Command) selectDisk(opts Options) (name, dir string, err error) {
	dir = opts.Path

	switch {
	case opts.Disk != "":
		if _, ok := c.Config.Lookup(opts.Disk); !ok {
			return "", "", fmt.Errorf("%w: %q", ErrUnknownDisk, opts.Disk)
		}
		name = opts.Disk
	case opts.Path != "":
		if disk, p, ok := c.Config.SplitDiskPath(opts.Path); ok {
			name, dir = disk, p
		} else if _, ok := c.Config.Lookup(c.Config.Default); ok {
			name = c.Config.Default
		}
	}

	if dir == "" {
		dir = "/"
	}
	return name, dir, nil
}

func (c *Command) printDisks() {
	fmt.Fprintln(c.Stdout, "Available disks:")
	w := tabwriter.NewWriter(c.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "name\tdriver")
	for _, name := range c.Config.DiskNames() {
		disk, _ := c.Config.Lookup(name)
		label := name
		if name == c.Config.Default {
			label += " [*]"
		}
		driver := disk.Driver
		if driver == "" {
			driver = "unknown"
		}
		fmt.Fprintf(w, "%s\t%s\n", label, driver)
	}
	w.Flush()
}

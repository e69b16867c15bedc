package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storagels/config"
	"storagels/core"
	"storagels/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "storage.toml", "Path to config file")
	var disk string
	flag.StringVar(&disk, "disk", "", "Select the filesystem disk")
	flag.StringVar(&disk, "d", "", "Select the filesystem disk (shorthand)")
	dir := flag.String("dir", "", "Directory to list (same as the positional argument)")
	long := flag.Bool("l", false, "Long format: type, size and modification time")
	recursive := flag.Bool("R", false, "List subdirectories recursively")
	verbose := flag.Bool("v", false, "Debug logging")
	schedule := flag.String("schedule", "", "Re-run the listing on this cron schedule until interrupted")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [path | disk:path]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// 1. Load Config
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// 2. Init Logging
	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logging: %v\n", err)
		return 1
	}
	defer logging.Sync()
	if *verbose {
		logging.SetLevel("debug")
	}

	path := *dir
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	opts := core.Options{
		Disk:       disk,
		Path:       path,
		LongFormat: *long,
		Recursive:  *recursive,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &core.Command{Config: cfg, Stdout: os.Stdout, Stderr: os.Stderr}
	if *schedule == "" {
		return cmd.Run(ctx, opts)
	}

	// 3. Scheduled mode: run until signalled
	runner := core.NewRunner(cmd, opts)
	if err := runner.Start(ctx, *schedule); err != nil {
		logging.L().Error("invalid schedule", zap.String("schedule", *schedule), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Invalid schedule %q: %v\n", *schedule, err)
		return 1
	}
	<-ctx.Done()

	logging.L().Info("shutting down")
	runner.Stop()
	return 0
}

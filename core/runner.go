package core

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"storagels/logging"
)

// Runner repeats a listing on a cron schedule.
type Runner struct {
	Command *Command
	Options Options
	Cron    *cron.Cron
}

func NewRunner(cmd *Command, opts Options) *Runner {
	return &Runner{
		Command: cmd,
		Options: opts,
		Cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start runs the listing once right away, then schedules it. Runs never
// overlap; a tick that fires while a listing is in progress is skipped.
func (r *Runner) Start(ctx context.Context, spec string) error {
	run := func() {
		start := time.Now()
		code := r.Command.Run(ctx, r.Options)
		logging.L().Info("scheduled listing finished",
			zap.Int("exit_code", code),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	if _, err := r.Cron.AddFunc(spec, run); err != nil {
		return err
	}
	logging.L().Info("scheduled listing", zap.String("schedule", spec))

	run()
	r.Cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running listing to finish.
func (r *Runner) Stop() {
	<-r.Cron.Stop().Done()
}

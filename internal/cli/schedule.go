package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron "+msg, append(keysAndValues, "error", err)...)
}

func newScheduleCmd(d *deps) *cobra.Command {
	flags := &runFlags{}
	var (
		spec      string
		immediate bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the sync on a cron schedule until interrupted",
		Long: `Run the sync on a cron schedule (standard five field spec or
descriptors such as @hourly) until SIGINT or SIGTERM. A tick that fires while
the previous run is still going is skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := d.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("cron") {
				spec = cfg.IngestSchedule
			}
			spec = strings.TrimSpace(spec)
			if spec == "" {
				return fmt.Errorf("--cron or INGEST_SCHEDULE is required")
			}

			input, err := flags.apply(cmd.Flags(), app.SyncInput(cfg))
			if err != nil {
				return err
			}
			followClock := cfg.IngestYearsDefaulted && !cmd.Flags().Changed("years")

			sess, err := d.newSession(cfg, app.Options{DryRun: flags.dryRun}, logger)
			if err != nil {
				return fmt.Errorf("init runtime: %w", err)
			}
			defer closeSession(sess, logger)

			ctx := cmd.Context()
			job := func() {
				if err := runOnce(ctx, d, sess, tickInput(input, followClock, d.now()), logger); err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					logger.Error("scheduled sync halted", "error", err)
				}
			}

			return runSchedule(ctx, spec, immediate, job, logger)
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron spec for the sync (default INGEST_SCHEDULE)")
	cmd.Flags().BoolVar(&immediate, "immediate", false, "Also run once at startup")
	flags.register(cmd.Flags())
	return cmd
}

// tickInput recomputes the default seasons on every tick so a long running
// scheduler rolls over into a new year.
func tickInput(base usecase.SyncInput, followClock bool, now time.Time) usecase.SyncInput {
	if !followClock {
		return base
	}
	base.Years = config.DefaultYears(now)
	return base
}

// runSchedule blocks until ctx is done, then waits for an in-flight job.
func runSchedule(ctx context.Context, spec string, immediate bool, job func(), logger *logging.Logger) error {
	adapter := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	entryID, err := c.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	c.Start()
	logger.Info("scheduler started", "cron", spec, "next_run", c.Entry(entryID).Next)

	if immediate {
		c.Entry(entryID).WrappedJob.Run()
	}

	<-ctx.Done()
	logger.Info("scheduler stopping", "reason", context.Cause(ctx))
	<-c.Stop().Done()
	return nil
}

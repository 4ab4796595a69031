package cli

import (
	"context"
	"fmt"

	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type runFlags struct {
	years    string
	statuses string
	from     string
	to       string
	noRounds bool
	noHoles  bool
	workers  int
	dryRun   bool
}

func (f *runFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.years, "years", "", "Comma separated seasons to sync (default INGEST_YEARS or previous and current year)")
	flags.StringVar(&f.statuses, "status", "", "Comma separated statuses to ingest: upcoming, in_progress, completed, unknown or all")
	flags.StringVar(&f.from, "from", "", "Only tournaments overlapping this date or later (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "Only tournaments overlapping this date or earlier (YYYY-MM-DD)")
	flags.BoolVar(&f.noRounds, "no-rounds", false, "Skip per-round rows (implies --no-holes)")
	flags.BoolVar(&f.noHoles, "no-holes", false, "Skip per-hole rows")
	flags.IntVar(&f.workers, "workers", 0, "Leaderboard worker pool size (default INGEST_WORKERS)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Write to an in-memory store instead of the configured sink")
}

// apply overlays flags that were set on the command line onto the configured input.
func (f *runFlags) apply(flags *pflag.FlagSet, input usecase.SyncInput) (usecase.SyncInput, error) {
	if flags.Changed("years") {
		years, err := config.ParseYears(f.years)
		if err != nil {
			return input, fmt.Errorf("parse --years: %w", err)
		}
		if len(years) > 0 {
			input.Years = years
		}
	}
	if flags.Changed("status") {
		statuses, err := config.ParseStatuses(f.statuses)
		if err != nil {
			return input, fmt.Errorf("parse --status: %w", err)
		}
		input.Statuses = statuses
	}
	if flags.Changed("from") {
		from, err := config.ParseDate(f.from)
		if err != nil {
			return input, fmt.Errorf("parse --from: %w", err)
		}
		input.From = from
	}
	if flags.Changed("to") {
		to, err := config.ParseDate(f.to)
		if err != nil {
			return input, fmt.Errorf("parse --to: %w", err)
		}
		input.To = to
	}
	if input.From != nil && input.To != nil && input.To.Before(*input.From) {
		return input, fmt.Errorf("--to must not be before --from")
	}
	if f.noRounds {
		input.IncludeRounds = false
		input.IncludeHoles = false
	}
	if f.noHoles {
		input.IncludeHoles = false
	}
	if flags.Changed("workers") {
		if f.workers < 1 {
			return input, fmt.Errorf("--workers must be >= 1")
		}
		input.Workers = f.workers
	}
	return input, nil
}

func newRunCmd(d *deps) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one full sync and print the run summary as JSON",
		Long: `Run one full sync: players, tournaments for every selected season,
then leaderboards, results, rounds and holes for the selected tournaments.

Exits with status 1 when the run halts (players could not be fetched,
every season failed, or the run was interrupted).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := d.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			input, err := flags.apply(cmd.Flags(), app.SyncInput(cfg))
			if err != nil {
				return err
			}

			sess, err := d.newSession(cfg, app.Options{DryRun: flags.dryRun}, logger)
			if err != nil {
				return fmt.Errorf("init runtime: %w", err)
			}
			defer closeSession(sess, logger)

			return runOnce(cmd.Context(), d, sess, input, logger)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runOnce(ctx context.Context, d *deps, sess *session, input usecase.SyncInput, logger *logging.Logger) error {
	result, syncErr := sess.syncer.Sync(ctx, input)
	if err := writeJSON(d.stdout, result); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	if sess.runtime != nil && sess.runtime.Memory != nil {
		logger.Info("dry run rows stored", "tables", sess.runtime.Memory.Counts())
	}
	if syncErr != nil {
		return fmt.Errorf("%w: %w", ErrRunHalted, syncErr)
	}
	return nil
}

func closeSession(sess *session, logger *logging.Logger) {
	if sess == nil || sess.close == nil {
		return
	}
	if err := sess.close(); err != nil {
		logger.Warn("close runtime failed", "error", err)
	}
}

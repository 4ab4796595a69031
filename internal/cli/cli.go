package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/observability"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// ErrRunHalted marks a sync that stopped before finishing the pipeline.
var ErrRunHalted = errors.New("sync run halted")

type syncer interface {
	Sync(ctx context.Context, input usecase.SyncInput) (usecase.SyncResult, error)
	ListTournaments(ctx context.Context, years []int, today time.Time) ([]tournament.Tournament, error)
}

type migrator interface {
	Up() error
	Down(steps int) error
	Version() (app.MigrationVersion, error)
	Force(version int) error
	Goto(target uint) error
	Close()
}

// session is what one command needs after bootstrap.
type session struct {
	syncer  syncer
	runtime *app.Runtime
	close   func() error
}

// deps are the seams between commands and the outside world.
type deps struct {
	stdout      io.Writer
	stderr      io.Writer
	logger      *logging.Logger
	now         func() time.Time
	loadConfig  func() (config.Config, error)
	loadMigrate func() (config.Config, error)
	newSession  func(cfg config.Config, opts app.Options, logger *logging.Logger) (*session, error)
	newMigrator func(cfg config.Config, logger *logging.Logger) (migrator, error)
	observe     bool
}

func defaultDeps() *deps {
	return &deps{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		now:         func() time.Time { return time.Now().UTC() },
		loadConfig:  config.Load,
		loadMigrate: config.LoadMigration,
		newSession:  newAppSession,
		newMigrator: func(cfg config.Config, logger *logging.Logger) (migrator, error) {
			return app.NewMigrator(cfg, logger)
		},
		observe: true,
	}
}

func newAppSession(cfg config.Config, opts app.Options, logger *logging.Logger) (*session, error) {
	rt, err := app.New(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	return &session{syncer: rt.Sync, runtime: rt, close: rt.Close}, nil
}

// NewRootCmd creates the golf-ingest command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "golf-ingest",
		Short: "Sync SportsData.io golf players, tournaments and leaderboards into Supabase",
		Long: `golf-ingest pulls players, tournaments and leaderboards from the
SportsData.io golf API and upserts them into the configured sink.
Every write is idempotent, so reruns only fill gaps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(d.stdout)
	cmd.SetErr(d.stderr)

	cmd.AddCommand(
		newRunCmd(d),
		newScheduleCmd(d),
		newTournamentsCmd(d),
		newMigrateCmd(d),
	)
	return cmd
}

// Execute runs the CLI with ctx and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// bootstrap loads config, sets up the logger and, outside tests, tracing and profiling.
func (d *deps) bootstrap(ctx context.Context) (config.Config, *logging.Logger, func(), error) {
	cfg, err := d.loadConfig()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := d.logger
	if logger == nil {
		logger = logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
		logging.SetDefault(logger)
	}
	if !d.observe {
		return cfg, logger, func() { _ = logger.Sync() }, nil
	}

	shutdownTracer, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return config.Config{}, nil, nil, fmt.Errorf("init pyroscope: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("shutdown uptrace failed", "error", err)
		}
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope failed", "error", err)
		}
		_ = logger.Sync()
	}
	return cfg, logger, cleanup, nil
}

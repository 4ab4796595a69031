package cli

import (
	"fmt"

	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/spf13/cobra"
)

func newMigrateCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the storage schema (DB_URL, db/migrations)",
		Long: `Manage the storage schema with golang-migrate.

Migrations are read from MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations
or /app/db/migrations, in that order.

Examples:
  golf-ingest migrate up
  golf-ingest migrate down 1
  golf-ingest migrate version
  golf-ingest migrate force 1772323205
  golf-ingest migrate goto 1772323205`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return d.withMigrator(func(m migrator) error { return m.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps, err := app.ParseSteps(args)
				if err != nil {
					return err
				}
				return d.withMigrator(func(m migrator) error { return m.Down(steps) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return d.withMigrator(func(m migrator) error {
					v, err := m.Version()
					if err != nil {
						return err
					}
					if v.None {
						fmt.Fprintln(d.stdout, "version: none")
						fmt.Fprintln(d.stdout, "dirty: false")
						return nil
					}
					fmt.Fprintf(d.stdout, "version: %d\n", v.Version)
					fmt.Fprintf(d.stdout, "dirty: %t\n", v.Dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := app.ParseVersion(args[0])
				if err != nil {
					return err
				}
				return d.withMigrator(func(m migrator) error { return m.Force(version) })
			},
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to the given version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				target, err := app.ParseTarget(args[0])
				if err != nil {
					return err
				}
				return d.withMigrator(func(m migrator) error { return m.Goto(target) })
			},
		},
	)
	return cmd
}

func (d *deps) withMigrator(fn func(m migrator) error) error {
	cfg, err := d.loadMigrate()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := d.logger
	if logger == nil {
		logger = logging.NewJSON(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()
	}

	m, err := d.newMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/golf-ingest/internal/app"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/spf13/cobra"
)

func newTournamentsCmd(d *deps) *cobra.Command {
	var (
		years  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "List tournaments with their classified status without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat := OutputFormat(strings.ToLower(strings.TrimSpace(format)))
			if outFormat != FormatText && outFormat != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			cfg, logger, cleanup, err := d.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			selected := cfg.IngestYears
			if cmd.Flags().Changed("years") {
				parsed, err := config.ParseYears(years)
				if err != nil {
					return fmt.Errorf("parse --years: %w", err)
				}
				if len(parsed) > 0 {
					selected = parsed
				}
			}

			// Listing never writes.
			sess, err := d.newSession(cfg, app.Options{DryRun: true}, logger)
			if err != nil {
				return fmt.Errorf("init runtime: %w", err)
			}
			defer closeSession(sess, logger)

			items, err := sess.syncer.ListTournaments(cmd.Context(), selected, d.now())
			if err != nil {
				return fmt.Errorf("list tournaments: %w", err)
			}
			return writeTournaments(d.stdout, items, outFormat)
		},
	}
	cmd.Flags().StringVar(&years, "years", "", "Comma separated seasons (default INGEST_YEARS)")
	cmd.Flags().StringVar(&format, "format", string(FormatText), "Output format: text or json")
	return cmd
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/golf-ingest/external/sportsdata"
	"github.com/riskibarqy/golf-ingest/internal/config"
	"github.com/riskibarqy/golf-ingest/internal/domain/leaderboard"
	"github.com/riskibarqy/golf-ingest/internal/domain/player"
	"github.com/riskibarqy/golf-ingest/internal/domain/result"
	"github.com/riskibarqy/golf-ingest/internal/domain/tournament"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/golf-ingest/internal/infrastructure/repository/postgrest"
	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/riskibarqy/golf-ingest/internal/platform/resilience"
	"github.com/riskibarqy/golf-ingest/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options adjusts wiring for a single invocation.
type Options struct {
	// DryRun swaps the configured sink for the in-memory store.
	DryRun bool
}

// Runtime holds the wired services for one process.
type Runtime struct {
	Sync      *usecase.GolfSyncService
	Ingestion *usecase.IngestionService
	// Memory is set when rows are kept in process (dry runs or STORAGE_DRIVER=memory).
	Memory *memory.Store
	Driver string

	closers []func() error
}

type writers struct {
	players     player.Writer
	tournaments tournament.Writer
	results     result.Writer
	summaries   leaderboard.Writer
}

func New(cfg config.Config, opts Options, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	provider := sportsdata.NewClient(sportsdata.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.SportsDataTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:         cfg.SportsDataBaseURL,
		APIKey:          cfg.SportsDataAPIKey,
		MaxRetries:      cfg.SportsDataMaxRetries,
		CatalogCacheTTL: cfg.SportsDataCacheTTL,
		Logger:          logger.Named("sportsdata"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportsDataCircuitEnabled,
			FailureThreshold: cfg.SportsDataCircuitFailureCount,
			OpenTimeout:      cfg.SportsDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportsDataCircuitHalfOpenMaxReq,
		},
	})

	driver := cfg.StorageDriver
	if opts.DryRun {
		driver = config.StorageDriverMemory
	}

	rt := &Runtime{Driver: driver}
	var sink writers
	switch driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		rt.Memory = store
		sink = writers{
			players:     store.Players,
			tournaments: store.Tournaments,
			results:     store.Results,
			summaries:   store.Leaderboards,
		}
	case config.StorageDriverPostgREST:
		client, err := postgrest.NewClient(postgrest.ClientConfig{
			BaseURL:    cfg.SupabaseURL,
			APIKey:     cfg.SupabaseKey,
			Timeout:    cfg.StorageTimeout,
			MaxRetries: cfg.StorageMaxRetries,
			BatchSize:  cfg.StorageBatchSize,
			Logger:     logger.Named("postgrest"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StorageCircuitEnabled,
				FailureThreshold: cfg.StorageCircuitFailureCount,
				OpenTimeout:      cfg.StorageCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StorageCircuitHalfOpenMaxReq,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("init postgrest client: %w", err)
		}
		sink = writers{
			players:     postgrest.NewPlayerRepository(client),
			tournaments: postgrest.NewTournamentRepository(client),
			results:     postgrest.NewResultRepository(client),
			summaries:   postgrest.NewLeaderboardRepository(client),
		}
	case config.StorageDriverPostgres:
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, db.Close)
		store := postgres.NewStore(db, cfg.StorageBatchSize, logger.Named("postgres"))
		sink = writers{
			players:     store,
			tournaments: store,
			results:     store,
			summaries:   store,
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	rt.Ingestion = usecase.NewIngestionService(sink.players, sink.tournaments, sink.results, sink.summaries, logger.Named("ingestion"))
	rt.Sync = usecase.NewGolfSyncService(provider, rt.Ingestion, logger.Named("sync"))

	logger.Info("runtime ready",
		"storage_driver", driver,
		"dry_run", opts.DryRun,
		"sportsdata_base_url", cfg.SportsDataBaseURL,
	)
	return rt, nil
}

// SyncInput builds the pipeline input from the INGEST_* settings.
func SyncInput(cfg config.Config) usecase.SyncInput {
	return usecase.SyncInput{
		Years:         append([]int(nil), cfg.IngestYears...),
		Statuses:      append([]tournament.Status(nil), cfg.IngestStatuses...),
		From:          cfg.IngestFrom,
		To:            cfg.IngestTo,
		IncludeRounds: cfg.IngestIncludeRounds,
		IncludeHoles:  cfg.IngestIncludeHoles,
		Workers:       cfg.IngestWorkers,
	}
}

func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(max(cfg.IngestWorkers*2, 4))
	db.SetMaxIdleConns(max(cfg.IngestWorkers, 2))
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StorageTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
